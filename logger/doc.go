// Package logger provides structured logging for cognitokit on top of zerolog.
//
// Loggers are component scoped and take field maps rather than chained
// builders, so call sites stay uniform across packages:
//
//	log := logger.Get("cognito")
//	log.Info("credentials built", logger.Fields("identity_pool_id", id))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stderr"
package logger
