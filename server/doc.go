// Package server exposes the credential adapter over HTTP using Gin, served
// over HTTP/1.1 and h2c.
//
// Routes:
//
//	GET  /health               component health, 503 when any is unhealthy
//	GET  /info                 build information
//	GET  /v1/identity          identity id of the stored credentials (?resolve=true retrieves first)
//	GET  /v1/tokens/:kind      access, id or refresh token of the signed-in user
//	GET  /v1/credentials       AWS credentials in the ECS container credentials shape
//	POST /v1/credentials       {"id_token": "..."} builds and stores identity pool credentials
//	POST /v1/session/refresh   refreshes the signed-in user's session
//	GET  /v1/events            Server-Sent Events stream (RegisterEvents, not rate limited)
//
// The /v1 group is rate limited per client and, when auth_token is set,
// requires it in the Authorization header. Pointing an AWS SDK at the server:
//
//	AWS_CONTAINER_CREDENTIALS_FULL_URI=http://127.0.0.1:8080/v1/credentials
//	AWS_CONTAINER_AUTHORIZATION_TOKEN=<auth_token>
//
// With tls.cert_file and tls.key_file set the listener serves HTTPS, and
// tls.client_ca_file additionally requires client certificates.
package server
