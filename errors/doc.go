// Package errors provides the structured error type used across cognitokit.
//
// AppError carries a machine-readable code, an HTTP status for the credential
// endpoint, and a retryable flag. Codes follow Google AIP-193 naming and the
// JSON body follows RFC 7807.
package errors
