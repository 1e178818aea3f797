// Package security builds TLS configurations for cognitokit transports.
//
// ClientTLS secures outbound connections such as the Redis token store.
// ServerTLS serves the credential API over HTTPS, optionally requiring
// client certificates signed by a configured CA.
//
//	srv := security.ServerTLS{
//	    CertFile:     "/etc/cognitokit/cert.pem",
//	    KeyFile:      "/etc/cognitokit/key.pem",
//	    ClientCAFile: "/etc/cognitokit/clients.pem",
//	}
//
//	tlsConfig, err := srv.Build()
package security
