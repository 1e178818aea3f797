package cognito

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/kbukum/cognitokit/auth"
	"github.com/kbukum/cognitokit/auth/userpool"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/observability"
)

var (
	// ErrNilCallback is returned by the callback accessors when called without a callback.
	ErrNilCallback = apperrors.MissingField("callback")
	// ErrNoCredentials is returned when no credentials have been set or built.
	ErrNoCredentials = apperrors.FailedPrecondition("no Cognito credentials have been built")
)

// SessionUser is a signed-in user whose session can be fetched.
type SessionUser interface {
	Username() string
	GetSession(ctx context.Context) (*userpool.Session, error)
}

// UserDirectory finds the signed-in user. It returns a nil SessionUser when
// nobody is signed in.
type UserDirectory interface {
	CurrentUser(ctx context.Context) (SessionUser, error)
}

type poolDirectory struct {
	pool *userpool.Pool
}

func (d poolDirectory) CurrentUser(ctx context.Context) (SessionUser, error) {
	u, err := d.pool.CurrentUser(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	return u, nil
}

// TokenKind selects a token from a session.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenID      TokenKind = "id"
	TokenRefresh TokenKind = "refresh"
)

// ParseTokenKind accepts "access", "id" and "refresh".
func ParseTokenKind(s string) (TokenKind, error) {
	switch k := TokenKind(s); k {
	case TokenAccess, TokenID, TokenRefresh:
		return k, nil
	default:
		return "", apperrors.InvalidInput("kind", fmt.Sprintf("unknown token kind %q", s))
	}
}

func (k TokenKind) from(s *userpool.Session) string {
	switch k {
	case TokenAccess:
		return s.AccessToken
	case TokenID:
		return s.IDToken
	default:
		return s.RefreshToken
	}
}

// Adapter holds the identity pool credentials of the application and hands
// out the signed-in user's tokens. One Credentials value is held at a time;
// setting or building replaces it.
type Adapter struct {
	cfg      *Config
	pool     *userpool.Pool
	users    UserDirectory
	identity IdentityAPI
	log      *logger.Logger
	metrics  *observability.Metrics
	events   Publisher

	mu    sync.RWMutex
	creds *Credentials

	pending sync.WaitGroup
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithUserDirectory replaces the pool as the source of the signed-in user.
func WithUserDirectory(d UserDirectory) Option {
	return func(a *Adapter) { a.users = d }
}

// WithMetrics records token and credential metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// NewAdapter creates an Adapter. A nil log uses the global logger.
func NewAdapter(cfg *Config, pool *userpool.Pool, identity IdentityAPI, log *logger.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	a := &Adapter{
		cfg:      cfg,
		pool:     pool,
		identity: identity,
		log:      log.WithComponent("cognito"),
	}
	if pool != nil {
		a.users = poolDirectory{pool: pool}
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// UserPool returns the configured user pool.
func (a *Adapter) UserPool() *userpool.Pool {
	return a.pool
}

// CurrentUser returns the signed-in user, or nil when nobody is signed in.
func (a *Adapter) CurrentUser(ctx context.Context) (SessionUser, error) {
	if a.users == nil {
		return nil, nil
	}
	return a.users.CurrentUser(ctx)
}

// SetCognitoCreds replaces the stored credentials.
func (a *Adapter) SetCognitoCreds(c *Credentials) {
	a.setCreds(c)
	if c == nil {
		a.publish(TopicCredentials, CredentialsEvent{Action: "cleared"})
		return
	}
	a.publish(TopicCredentials, CredentialsEvent{Action: "set"})
}

func (a *Adapter) setCreds(c *Credentials) {
	a.mu.Lock()
	a.creds = c
	a.mu.Unlock()
}

// CognitoCreds returns the stored credentials, or nil.
func (a *Adapter) CognitoCreds() *Credentials {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds
}

// LoginKey returns the logins map key ID tokens are registered under.
func (a *Adapter) LoginKey() string {
	return a.cfg.LoginKey()
}

// BuildCognitoCreds creates identity pool credentials for idToken, stores
// them and returns them. No network call is made until they are retrieved.
func (a *Adapter) BuildCognitoCreds(idToken string) *Credentials {
	logins := map[string]string{a.cfg.LoginKey(): idToken}
	creds := NewCredentials(a.cfg.IdentityPoolID, logins, a.identity)
	creds.metrics = a.metrics
	a.setCreds(creds)
	a.log.Debug("built identity pool credentials", logger.Fields("login", a.cfg.LoginKey()))
	a.publish(TopicCredentials, CredentialsEvent{Action: "built", LoginKey: a.cfg.LoginKey()})
	return creds
}

// CognitoIdentity returns the identity id of the stored credentials. It is
// empty until the credentials have been retrieved once.
func (a *Adapter) CognitoIdentity() (string, error) {
	creds := a.CognitoCreds()
	if creds == nil {
		return "", ErrNoCredentials
	}
	return creds.IdentityID(), nil
}

// Credentials retrieves AWS credentials from the stored credentials.
func (a *Adapter) Credentials(ctx context.Context) (aws.Credentials, error) {
	creds := a.CognitoCreds()
	if creds == nil {
		return aws.Credentials{}, ErrNoCredentials
	}
	return creds.Retrieve(ctx)
}

// AccessToken returns the signed-in user's access token.
func (a *Adapter) AccessToken(ctx context.Context) auth.TokenResult {
	return a.token(ctx, TokenAccess)
}

// IDToken returns the signed-in user's ID token.
func (a *Adapter) IDToken(ctx context.Context) auth.TokenResult {
	return a.token(ctx, TokenID)
}

// RefreshToken returns the signed-in user's refresh token.
func (a *Adapter) RefreshToken(ctx context.Context) auth.TokenResult {
	return a.token(ctx, TokenRefresh)
}

// Token returns the token of the given kind.
func (a *Adapter) Token(ctx context.Context, kind TokenKind) auth.TokenResult {
	return a.token(ctx, kind)
}

// GetAccessToken resolves the access token on a goroutine and passes it to
// cb. See GetToken.
func (a *Adapter) GetAccessToken(ctx context.Context, cb auth.TokenCallback) error {
	return a.GetToken(ctx, TokenAccess, cb)
}

// GetIDToken resolves the ID token on a goroutine and passes it to cb.
func (a *Adapter) GetIDToken(ctx context.Context, cb auth.TokenCallback) error {
	return a.GetToken(ctx, TokenID, cb)
}

// GetRefreshToken resolves the refresh token on a goroutine and passes it to cb.
func (a *Adapter) GetRefreshToken(ctx context.Context, cb auth.TokenCallback) error {
	return a.GetToken(ctx, TokenRefresh, cb)
}

// GetToken returns ErrNilCallback without doing anything when cb is nil.
// Otherwise it resolves the token asynchronously and calls cb once with the
// token, or with nil when nobody is signed in or the session could not be
// fetched. cb is not called when the session exists but is not valid.
func (a *Adapter) GetToken(ctx context.Context, kind TokenKind, cb auth.TokenCallback) error {
	if isNilCallback(cb) {
		return ErrNilCallback
	}

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		res := a.token(ctx, kind)
		if res.Status == auth.TokenInvalidSession {
			return
		}
		a.invoke(kind, cb, res.Ptr())
	}()
	return nil
}

// Wait blocks until every callback started by GetToken has returned.
func (a *Adapter) Wait() {
	a.pending.Wait()
}

// Refresh fetches the signed-in user's session, which refreshes it through
// the user pool when it has expired. The result is only logged.
func (a *Adapter) Refresh(ctx context.Context) {
	user, err := a.CurrentUser(ctx)
	if err != nil {
		a.log.Error("can't load the signed-in user", logger.ErrorFields("refresh", err))
		return
	}
	if user == nil {
		a.log.Warn("refresh requested with no signed-in user")
		return
	}

	fields := logger.Fields(logger.FieldUsername, user.Username())
	ev := SessionEvent{Username: user.Username()}
	sess, err := user.GetSession(ctx)
	switch {
	case err != nil:
		a.log.Error("can't refresh the session", logger.MergeWithError(fields, err))
		ev.Action, ev.Error = "failed", err.Error()
	case sess.IsValid():
		a.log.Info("refreshed successfully", fields)
		ev.Action = "refreshed"
	default:
		a.log.Warn("refreshed but session is still not valid", fields)
		ev.Action = "invalid"
	}
	a.publish(TopicSession, ev)
}

func (a *Adapter) token(ctx context.Context, kind TokenKind) auth.TokenResult {
	res := a.resolve(ctx, kind)
	a.metrics.RecordTokenRequest(ctx, string(kind), res.Status.String())
	return res
}

func (a *Adapter) resolve(ctx context.Context, kind TokenKind) auth.TokenResult {
	user, err := a.CurrentUser(ctx)
	if err != nil {
		a.log.Error("can't load the signed-in user", logger.MergeWithError(
			logger.Fields(logger.FieldTokenKind, string(kind)), err))
		return auth.TokenResult{Status: auth.TokenFailed, Err: err}
	}
	if user == nil {
		return auth.TokenResult{Status: auth.TokenAbsent}
	}

	fields := logger.Fields(
		logger.FieldTokenKind, string(kind),
		logger.FieldUsername, user.Username(),
	)
	sess, err := user.GetSession(ctx)
	if err != nil {
		a.log.Error("can't fetch the session", logger.MergeWithError(fields, err))
		return auth.TokenResult{Status: auth.TokenFailed, Err: err}
	}
	if !sess.IsValid() {
		a.log.Warn("got the session, but it isn't valid", fields)
		return auth.TokenResult{Status: auth.TokenInvalidSession}
	}
	return auth.TokenResult{Status: auth.TokenOK, Token: kind.from(sess)}
}

func (a *Adapter) invoke(kind TokenKind, cb auth.TokenCallback, token *string) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("token callback panicked", logger.Fields(
				logger.FieldTokenKind, string(kind),
				"panic", fmt.Sprint(r),
			))
		}
	}()
	cb.CallbackWithParam(token)
}

func isNilCallback(cb auth.TokenCallback) bool {
	if cb == nil {
		return true
	}
	f, ok := cb.(auth.TokenCallbackFunc)
	return ok && f == nil
}
