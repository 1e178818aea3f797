// Package userpool is the client side of a Cognito user pool app client.
//
// A Pool runs USER_PASSWORD_AUTH login flows (including MFA and new-password
// challenges) and keeps each user's tokens in a provider.ContextStore under
// the same keys the browser SDK uses in local storage:
//
//	<clientId>.LastAuthUser   the signed-in user
//	<clientId>.<username>     that user's ID, access and refresh tokens
//
// User.GetSession reads those tokens back, refreshing them through
// REFRESH_TOKEN_AUTH when they have expired. Token signatures are never
// checked; only the exp and iat claims are read.
package userpool
