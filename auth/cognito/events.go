package cognito

// Event topics published by the Adapter.
const (
	TopicCredentials = "credentials"
	TopicSession     = "session"
)

// Publisher receives adapter events. Publish must not block.
type Publisher interface {
	Publish(topic string, payload any)
}

// CredentialsEvent is published on TopicCredentials whenever the stored
// credentials are replaced or cleared.
type CredentialsEvent struct {
	Action   string `json:"action"` // "built", "set" or "cleared"
	LoginKey string `json:"login_key,omitempty"`
}

// SessionEvent is published on TopicSession after Refresh.
type SessionEvent struct {
	Action   string `json:"action"` // "refreshed", "invalid" or "failed"
	Username string `json:"username"`
	Error    string `json:"error,omitempty"`
}

// WithPublisher sends credential and session events to p.
func WithPublisher(p Publisher) Option {
	return func(a *Adapter) { a.events = p }
}

func (a *Adapter) publish(topic string, payload any) {
	if a.events != nil {
		a.events.Publish(topic, payload)
	}
}
