package userpool

import "time"

// Record is what the token store holds per user. The last-auth-user entry
// is a Record with only Username set.
type Record struct {
	Username     string        `json:"username"`
	IDToken      string        `json:"id_token,omitempty"`
	AccessToken  string        `json:"access_token,omitempty"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	ClockDrift   time.Duration `json:"clock_drift,omitempty"`
}

// Session returns the stored tokens as a Session.
func (r *Record) Session() *Session {
	return &Session{
		IDToken:      r.IDToken,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ClockDrift:   r.ClockDrift,
	}
}

func recordFor(username string, s *Session) *Record {
	return &Record{
		Username:     username,
		IDToken:      s.IDToken,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ClockDrift:   s.ClockDrift,
	}
}

// LastAuthUserKey is the store key naming the signed-in user of a client.
func LastAuthUserKey(clientID string) string {
	return clientID + ".LastAuthUser"
}

// UserKey is the store key holding a user's tokens.
func UserKey(clientID, username string) string {
	return clientID + "." + username
}
