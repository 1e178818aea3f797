// Package storage gives each Cognito identity a private folder in an object
// store.
//
// Backends register themselves by provider name; import the ones you need:
//
//	import (
//	    _ "github.com/kbukum/cognitokit/storage/local"
//	    _ "github.com/kbukum/cognitokit/storage/s3"
//	)
//
// The S3 backend signs with the identity pool credentials supplied by an
// IdentitySource, so an identity can only reach keys its IAM role allows,
// conventionally "private/${cognito-identity.amazonaws.com:sub}/*".
// Component.ForIdentity returns a Scoped view rooted at that folder.
package storage
