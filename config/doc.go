// Package config loads layered configuration for cognitokit binaries.
//
// Values come from a YAML file, then a .env file, then the process
// environment, in increasing priority. Environment variables are matched to
// nested keys by trying every underscore/dot split, so COGNITO_USER_POOL_ID
// reaches cognito.user_pool_id.
//
//	var cfg app.Config
//	if err := config.LoadConfig("cognitoctl", &cfg); err != nil { ... }
package config
