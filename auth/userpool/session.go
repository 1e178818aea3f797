package userpool

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the token set of a signed-in user.
type Session struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	// ClockDrift is local time minus the issuer's time at issue, used to
	// judge expiry against the issuer's clock.
	ClockDrift time.Duration
}

// NewSession builds a session and measures clock drift from the tokens'
// issue times as seen at now.
func NewSession(idToken, accessToken, refreshToken string, now time.Time) *Session {
	s := &Session{
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	s.ClockDrift = clockDrift(now, idToken, accessToken)
	return s
}

// IsValid reports whether both the ID and access tokens are unexpired now.
func (s *Session) IsValid() bool {
	return s.IsValidAt(time.Now())
}

// IsValidAt reports whether both the ID and access tokens are unexpired at
// now, corrected for clock drift. Tokens without a readable exp claim are
// never valid.
func (s *Session) IsValidAt(now time.Time) bool {
	if s == nil {
		return false
	}
	adjusted := now.Add(-s.ClockDrift)
	for _, tok := range []string{s.IDToken, s.AccessToken} {
		exp, ok := expiresAt(tok)
		if !ok || !adjusted.Before(exp) {
			return false
		}
	}
	return true
}

// ExpiresAt returns the earlier expiry of the ID and access tokens, or the
// zero time when either is unreadable.
func (s *Session) ExpiresAt() time.Time {
	idExp, ok := expiresAt(s.IDToken)
	if !ok {
		return time.Time{}
	}
	accessExp, ok := expiresAt(s.AccessToken)
	if !ok {
		return time.Time{}
	}
	if accessExp.Before(idExp) {
		return accessExp
	}
	return idExp
}

// Token claims are read without verifying signatures.
func parseClaims(tok string) (jwt.MapClaims, bool) {
	if tok == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func expiresAt(tok string) (time.Time, bool) {
	claims, ok := parseClaims(tok)
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func issuedAt(tok string) (time.Time, bool) {
	claims, ok := parseClaims(tok)
	if !ok {
		return time.Time{}, false
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return time.Time{}, false
	}
	return iat.Time, true
}

func clockDrift(now time.Time, tokens ...string) time.Duration {
	var earliest time.Time
	for _, tok := range tokens {
		iat, ok := issuedAt(tok)
		if !ok {
			continue
		}
		if earliest.IsZero() || iat.Before(earliest) {
			earliest = iat
		}
	}
	if earliest.IsZero() {
		return 0
	}
	return now.Truncate(time.Second).Sub(earliest)
}
