package auth

// TokenStatus tells a TokenResult apart without inspecting its fields.
type TokenStatus int

const (
	// TokenAbsent means no user is signed in.
	TokenAbsent TokenStatus = iota
	// TokenOK means Token holds a token from a valid session.
	TokenOK
	// TokenFailed means the session could not be fetched; Err says why.
	TokenFailed
	// TokenInvalidSession means a session exists but is no longer valid.
	TokenInvalidSession
)

func (s TokenStatus) String() string {
	switch s {
	case TokenAbsent:
		return "absent"
	case TokenOK:
		return "ok"
	case TokenFailed:
		return "failed"
	case TokenInvalidSession:
		return "invalid_session"
	default:
		return "unknown"
	}
}

// TokenResult is the outcome of a token lookup.
type TokenResult struct {
	Status TokenStatus
	Token  string
	Err    error
}

// OK reports whether Token is usable.
func (r TokenResult) OK() bool {
	return r.Status == TokenOK
}

// Ptr returns a pointer to Token when OK, nil otherwise. It is the value a
// TokenCallback receives.
func (r TokenResult) Ptr() *string {
	if r.Status != TokenOK {
		return nil
	}
	tok := r.Token
	return &tok
}

// TokenCallback receives a token, or nil when none is available.
type TokenCallback interface {
	CallbackWithParam(token *string)
}

// TokenCallbackFunc adapts a function to TokenCallback.
type TokenCallbackFunc func(token *string)

// CallbackWithParam implements TokenCallback.
func (f TokenCallbackFunc) CallbackWithParam(token *string) {
	f(token)
}
