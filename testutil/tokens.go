package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var signingKey = []byte("cognitokit-test-key")

// Claims are the token claims tests usually care about.
type Claims struct {
	Subject   string
	Username  string
	TokenUse  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// MintToken returns an HS256 JWT carrying c. Zero times are omitted.
func MintToken(t testing.TB, c Claims) string {
	t.Helper()
	claims := jwt.MapClaims{}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if c.Username != "" {
		claims["cognito:username"] = c.Username
	}
	if c.TokenUse != "" {
		claims["token_use"] = c.TokenUse
	}
	if !c.IssuedAt.IsZero() {
		claims["iat"] = c.IssuedAt.Unix()
	}
	if !c.ExpiresAt.IsZero() {
		claims["exp"] = c.ExpiresAt.Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return tok
}

// Tokens is an ID/access/refresh triple.
type Tokens struct {
	ID      string
	Access  string
	Refresh string
}

// SessionTokens mints an ID and access token for username, issued at iat and
// expiring at exp, plus an opaque refresh token.
func SessionTokens(t testing.TB, username string, iat, exp time.Time) Tokens {
	t.Helper()
	return Tokens{
		ID:      MintToken(t, Claims{Subject: username + "-sub", Username: username, TokenUse: "id", IssuedAt: iat, ExpiresAt: exp}),
		Access:  MintToken(t, Claims{Subject: username + "-sub", Username: username, TokenUse: "access", IssuedAt: iat, ExpiresAt: exp}),
		Refresh: "refresh-" + username,
	}
}

// ValidTokens is SessionTokens issued now and expiring in an hour.
func ValidTokens(t testing.TB, username string) Tokens {
	now := time.Now()
	return SessionTokens(t, username, now, now.Add(time.Hour))
}

// ExpiredTokens is SessionTokens that expired a minute ago.
func ExpiredTokens(t testing.TB, username string) Tokens {
	now := time.Now()
	return SessionTokens(t, username, now.Add(-2*time.Hour), now.Add(-time.Minute))
}
