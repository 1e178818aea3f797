// Package bootstrap runs the component lifecycle of a cognitokit binary.
//
// An App starts every registered component in order, runs the configure
// callbacks and hooks, prints a startup summary and stops everything in
// reverse order on shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//		return err
//	}
//	_ = app.RegisterComponent(cognitoComponent)
//	return app.Run(ctx)
//
// RunTask runs the same lifecycle around a finite task, which is how the
// cognitoctl subcommands use it.
package bootstrap
