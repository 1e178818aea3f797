package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/cognitokit/app"
	"github.com/kbukum/cognitokit/auth"
	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/logger"
)

const passwordEnv = envPrefix + "PASSWORD"

func newLoginCmd(c *cli) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the user pool",
		Long: `Sign in with USER_PASSWORD_AUTH and store the session in the token store.
MFA and email codes are prompted for.

Examples:
  cognitoctl login -u alice
  COGNITOKIT_PASSWORD=... cognitoctl login -u alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd)
			if username == "" {
				u, err := p.ask("Username")
				if err != nil {
					return err
				}
				username = u
			}
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				pw, err := p.secret("Password")
				if err != nil {
					return err
				}
				password = pw
			}
			return c.runTask(cmd, nil, func(ctx context.Context, kit *app.Kit) error {
				return login(ctx, cmd, kit, p, username, password)
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "user name (prompted when empty)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty; prefer COGNITOKIT_PASSWORD)")
	return cmd
}

func login(ctx context.Context, cmd *cobra.Command, kit *app.Kit, p *prompter, username, password string) error {
	out := kit.Pool().Authenticate(ctx, username, password)
	for {
		switch o := out.(type) {
		case auth.Success:
			sess, ok := o.Result.(*userpool.Session)
			if !ok {
				return fmt.Errorf("login: unexpected result %T", o.Result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s, session valid until %s\n",
				username, sess.ExpiresAt().Local().Format(time.RFC1123))

			adapter := kit.Adapter()
			adapter.BuildCognitoCreds(sess.IDToken)
			if _, err := adapter.Credentials(ctx); err != nil {
				kit.Logger.Warn("Identity pool credentials unavailable", logger.ErrorFields("credentials", err))
				return nil
			}
			id, _ := adapter.CognitoIdentity()
			fmt.Fprintf(cmd.OutOrStdout(), "Identity %s\n", id)
			return nil
		case auth.ChallengeRequired:
			code, err := p.ask(challengeLabel(o))
			if err != nil {
				return err
			}
			out = o.Resume(ctx, code)
		case auth.Failure:
			return fmt.Errorf("login failed: %w", o)
		default:
			return fmt.Errorf("login: unexpected outcome %T", out)
		}
	}
}

func challengeLabel(ch auth.ChallengeRequired) string {
	switch ch.Name {
	case auth.ChallengeNewPassword:
		return "New password"
	case auth.ChallengeSelectMFAType:
		return "MFA type (SMS_MFA or SOFTWARE_TOKEN_MFA)"
	case auth.ChallengeSoftwareTokenMFA:
		return "Authenticator code"
	}
	if dest := ch.Parameters.DeliveryDestination(); dest != "" {
		return fmt.Sprintf("Code sent to %s", dest)
	}
	return ch.Name + " code"
}

func newLogoutCmd(c *cli) *cobra.Command {
	var global, revoke bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out the current user",
		Long: `Remove the current user's session from the token store.
--revoke also revokes the refresh token; --global signs out every device.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTask(cmd, nil, func(ctx context.Context, kit *app.Kit) error {
				user, err := kit.Pool().CurrentUser(ctx)
				if err != nil {
					return err
				}
				if user == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				switch {
				case global:
					err = user.GlobalSignOut(ctx)
				case revoke:
					err = user.RevokeSession(ctx)
				default:
					err = user.SignOut(ctx)
				}
				if err != nil {
					return fmt.Errorf("sign out %s: %w", user.Username(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s\n", user.Username())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "invalidate every token issued to the user")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "revoke the refresh token")
	cmd.MarkFlagsMutuallyExclusive("global", "revoke")
	return cmd
}
