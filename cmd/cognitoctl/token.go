package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/cognitokit/app"
	"github.com/kbukum/cognitokit/auth"
	"github.com/kbukum/cognitokit/auth/cognito"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/util"
)

func newTokenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "token <access|id|refresh>",
		Short:     "Print a token of the current session",
		Long:      "Print a token of the signed-in user's session, refreshing the session first when it expired.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(cognito.TokenAccess), string(cognito.TokenID), string(cognito.TokenRefresh)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := cognito.ParseTokenKind(args[0])
			if err != nil {
				return err
			}
			return c.runTask(cmd, nil, func(ctx context.Context, kit *app.Kit) error {
				tok, err := sessionToken(ctx, kit, kind)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				return nil
			})
		},
	}
}

// sessionToken turns a token lookup into a value or a user-facing error.
func sessionToken(ctx context.Context, kit *app.Kit, kind cognito.TokenKind) (string, error) {
	res := kit.Adapter().Token(ctx, kind)
	switch res.Status {
	case auth.TokenOK:
		return res.Token, nil
	case auth.TokenAbsent:
		return "", apperrors.Unauthorized("not signed in; run cognitoctl login")
	case auth.TokenInvalidSession:
		return "", apperrors.TokenExpired()
	default:
		return "", res.Err
	}
}

// buildFromSession builds identity pool credentials from the current
// session's ID token.
func buildFromSession(ctx context.Context, kit *app.Kit) (*cognito.Credentials, error) {
	idToken, err := sessionToken(ctx, kit, cognito.TokenID)
	if err != nil {
		return nil, err
	}
	return kit.Adapter().BuildCognitoCreds(idToken), nil
}

type credentialsOutput struct {
	IdentityID      string `json:"identity_id"`
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	SessionToken    string `json:"session_token,omitempty"`
	Expiration      string `json:"expiration,omitempty"`
}

func newIdentityCmd(c *cli) *cobra.Command {
	var withCreds, showSecrets bool
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Print the identity pool identity of the current user",
		Long: `Exchange the current session's ID token for identity pool credentials and
print the identity id. --credentials prints the AWS keys as JSON with the
secrets masked unless --show-secrets is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTask(cmd, nil, func(ctx context.Context, kit *app.Kit) error {
				if _, err := buildFromSession(ctx, kit); err != nil {
					return err
				}
				adapter := kit.Adapter()
				creds, err := adapter.Credentials(ctx)
				if err != nil {
					return err
				}
				id, err := adapter.CognitoIdentity()
				if err != nil {
					return err
				}
				if !withCreds {
					fmt.Fprintln(cmd.OutOrStdout(), id)
					return nil
				}

				out := credentialsOutput{
					IdentityID:      id,
					AccessKeyID:     creds.AccessKeyID,
					SecretAccessKey: creds.SecretAccessKey,
					SessionToken:    creds.SessionToken,
				}
				if creds.CanExpire {
					out.Expiration = creds.Expires.UTC().Format(time.RFC3339)
				}
				if !showSecrets {
					out.SecretAccessKey = util.MaskSecret(out.SecretAccessKey, 4)
					out.SessionToken = util.MaskSecret(out.SessionToken, 8)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			})
		},
	}
	cmd.Flags().BoolVar(&withCreds, "credentials", false, "print the AWS credentials as JSON")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "do not mask the secret key and session token")
	return cmd
}

func newRefreshCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the current session",
		Long:  "Load the current session, refreshing it through the user pool when it expired.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTask(cmd, nil, func(ctx context.Context, kit *app.Kit) error {
				kit.Adapter().Refresh(ctx)
				if _, err := sessionToken(ctx, kit, cognito.TokenAccess); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session is valid")
				return nil
			})
		},
	}
}
