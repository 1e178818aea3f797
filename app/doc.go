// Package app is the composition root of cognitokit binaries.
//
// Config gathers every section a binary reads. Modules is the declared list
// of infrastructure components (Redis token store, event hub, Cognito
// adapter, storage and the HTTP credential server) and New builds and
// registers them into a bootstrap.App:
//
//	var cfg app.Config
//	if err := config.LoadConfig("cognitoctl", &cfg); err != nil {
//		return err
//	}
//	kit, err := app.New(&cfg)
//	if err != nil {
//		return err
//	}
//	return kit.RunTask(ctx, func(ctx context.Context) error {
//		res := kit.Adapter().IDToken(ctx)
//		...
//	})
//
// The application state store comes from NewStore; outside production its
// states are frozen.
package app
