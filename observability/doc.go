// Package observability provides OpenTelemetry tracing and metrics for the
// Cognito client, the credential adapter and the HTTP server.
//
// Setup:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "cognitoctl", version, env)
//	defer shutdown(ctx)
//
// Operations:
//
//	metrics, _ := observability.DefaultMetrics()
//	oc := observability.NewOperationContext("initiate-auth", username, metrics)
//	ctx, span := oc.Start(ctx, observability.SpanInitiateAuth)
//	defer func() { oc.End(ctx, span, err) }()
//
// Health:
//
//	health := observability.Aggregate("cognitoctl", version, registry.HealthAll(ctx))
package observability
