// Package cognito exchanges user pool ID tokens for identity pool
// credentials and hands out the signed-in user's tokens.
//
// The Adapter holds at most one Credentials value. BuildCognitoCreds maps an
// ID token under the pool's login key
// ("cognito-idp.<region>.amazonaws.com/<userPoolId>", or
// "<idp_endpoint>/<userPoolId>" when an endpoint override is configured) and
// replaces whatever was stored before.
//
// Token accessors come in two forms. AccessToken, IDToken and RefreshToken
// block and return an auth.TokenResult. GetAccessToken, GetIDToken and
// GetRefreshToken take an auth.TokenCallback, run on a goroutine and call it
// at most once:
//
//	nobody signed in         cb(nil)
//	session fetch failed     cb(nil), error logged
//	valid session            cb(&token)
//	invalid session          no call, warning logged
package cognito
