// Package version reports build information for cognitoctl and the
// credential server.
//
// Values are set at link time and fall back to the module's VCS stamp:
//
//	go build -ldflags "-X github.com/kbukum/cognitokit/version.Version=1.2.0" ./cmd/cognitoctl
package version
