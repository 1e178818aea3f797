package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/cognitokit/app"
	"github.com/kbukum/cognitokit/bootstrap"
	"github.com/kbukum/cognitokit/config"
	apperrors "github.com/kbukum/cognitokit/errors"
)

const (
	serviceName = "cognitoctl"
	envPrefix   = "COGNITOKIT_"
)

// cli holds the global flags and the options every command builds its kit
// with.
type cli struct {
	cfgFile string
	envFile string
	verbose bool

	// kitOpts are appended to the options of every app.New call.
	kitOpts []app.Option
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Cognito user pool and identity pool client",
		Long: `cognitoctl signs in to an Amazon Cognito user pool and exchanges the
session for identity pool credentials.

Configuration is read from ./cognitoctl.yml, ./config.yml or
$XDG_CONFIG_HOME/cognitoctl/config.yml, then from COGNITOKIT_* variables.

Example usage:
  cognitoctl login -u alice           # Sign in, prompting for the password
  cognitoctl token id                 # Print the ID token of the session
  cognitoctl identity --credentials   # Print the identity id and AWS keys
  cognitoctl serve                    # Serve credentials on 127.0.0.1:8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: search ./cognitoctl.yml, ./config.yml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", ".env file to load (default: .env.cognitoctl or .env)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newTokenCmd(c),
		newIdentityCmd(c),
		newRefreshCmd(c),
		newServeCmd(c),
		newFilesCmd(c),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the configuration. Commands are quiet unless -v is given
// or the file sets logging.level.
func (c *cli) loadConfig() (*app.Config, error) {
	cfg := &app.Config{}
	cfg.Name = serviceName
	cfg.Logging.Level = "warn"

	opts := []config.LoaderOption{config.WithEnvPrefix(envPrefix)}
	if c.cfgFile != "" {
		opts = append(opts, config.WithConfigFile(c.cfgFile))
	}
	if c.envFile != "" {
		opts = append(opts, config.WithEnvFile(c.envFile))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newKit loads the configuration, lets adjust change it and builds the kit.
func (c *cli) newKit(adjust func(*app.Config), opts ...app.Option) (*app.Kit, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	opts = append(opts, c.kitOpts...)
	return app.New(cfg, opts...)
}

// runTask builds a kit without a startup summary and runs task inside its
// lifecycle.
func (c *cli) runTask(cmd *cobra.Command, adjust func(*app.Config), task func(ctx context.Context, kit *app.Kit) error) error {
	kit, err := c.newKit(adjust, app.WithBootstrapOptions(bootstrap.WithSummaryWriter(io.Discard)))
	if err != nil {
		return err
	}
	return kit.RunTask(cmd.Context(), func(ctx context.Context) error {
		return task(ctx, kit)
	})
}

// userMessage renders err for the terminal. AppErrors show their message
// without the wrapped cause.
func userMessage(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return fmt.Sprintf("%s (%s)", appErr.Message, appErr.Code)
	}
	return err.Error()
}
