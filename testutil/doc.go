// Package testutil holds helpers shared by cognitokit tests: lifecycle
// helpers for test components and a minter for unsigned-verification JWTs
// with controllable iat/exp claims.
//
//	mini := redistest.NewComponent()
//	testutil.T(t).Setup(mini)
//	tok := testutil.MintToken(t, testutil.Claims{Username: "alice", ExpiresAt: time.Now().Add(time.Hour)})
package testutil
