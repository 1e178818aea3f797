package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/cognitokit/app"
	"github.com/kbukum/cognitokit/bootstrap"
	"github.com/kbukum/cognitokit/logger"
)

func newServeCmd(c *cli) *cobra.Command {
	var host string
	var port int
	var events bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session's credentials over HTTP",
		Long: `Run the HTTP credential server until interrupted. When a user is signed in,
identity pool credentials are built from the session at startup.

Point the AWS SDKs at it with:
  AWS_CONTAINER_CREDENTIALS_FULL_URI=http://127.0.0.1:8080/v1/credentials
  AWS_CONTAINER_AUTHORIZATION_TOKEN=<server.auth_token>

With --events, credential and session changes are streamed from /v1/events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kit, err := c.newKit(func(cfg *app.Config) {
				cfg.Server.Enabled = true
				if host != "" {
					cfg.Server.Host = host
				}
				if port != 0 {
					cfg.Server.Port = port
				}
				if events {
					cfg.Server.Events = true
				}
			}, app.WithBootstrapOptions(bootstrap.WithSummaryWriter(cmd.ErrOrStderr())))
			if err != nil {
				return err
			}
			kit.OnReady(func(ctx context.Context) error {
				if _, err := buildFromSession(ctx, kit); err != nil {
					kit.Logger.Warn("Serving without credentials until POST /v1/credentials",
						logger.ErrorFields("build-credentials", err))
				}
				return nil
			})
			if err := kit.Run(cmd.Context()); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default: server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default: server.port)")
	cmd.Flags().BoolVar(&events, "events", false, "serve the event stream at /v1/events")
	return cmd
}
