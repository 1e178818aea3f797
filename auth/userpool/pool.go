package userpool

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/cognitokit/auth"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/observability"
	"github.com/kbukum/cognitokit/provider"
)

// Pool is the client side of a user pool app client: it runs login flows and
// keeps the resulting tokens in a ContextStore.
type Pool struct {
	cfg     *Config
	api     API
	store   provider.ContextStore[Record]
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Option configures a Pool.
type Option func(*Pool)

// WithMetrics records Cognito operation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pool) { p.metrics = m }
}

// WithClock replaces time.Now for session validity checks.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

// NewPool creates a Pool. A nil log uses the global logger.
func NewPool(cfg *Config, api API, store provider.ContextStore[Record], log *logger.Logger, opts ...Option) *Pool {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	p := &Pool{
		cfg:   cfg,
		api:   api,
		store: store,
		log:   log.WithComponent("userpool"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the user pool id.
func (p *Pool) ID() string { return p.cfg.UserPoolID }

// ClientID returns the app client id.
func (p *Pool) ClientID() string { return p.cfg.ClientID }

// Config returns the pool configuration.
func (p *Pool) Config() *Config { return p.cfg }

// User returns a handle for username. It does not touch the store.
func (p *Pool) User(username string) *User {
	return &User{pool: p, username: username}
}

// CurrentUser returns the last user to sign in on this client, or nil when
// nobody is signed in.
func (p *Pool) CurrentUser(ctx context.Context) (*User, error) {
	rec, err := p.store.Load(ctx, LastAuthUserKey(p.cfg.ClientID))
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	if rec == nil || rec.Username == "" {
		return nil, nil
	}
	return p.User(rec.Username), nil
}

// SignIn runs Authenticate and reports the outcome to cb.
func (p *Pool) SignIn(ctx context.Context, username, password string, cb auth.LoginCallback) {
	auth.Deliver(ctx, p.Authenticate(ctx, username, password), cb)
}

// Authenticate starts a USER_PASSWORD_AUTH flow. The outcome is Success with
// a *Session, Failure, or ChallengeRequired whose Resume continues the flow.
func (p *Pool) Authenticate(ctx context.Context, username, password string) auth.Outcome {
	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	p.addSecretHash(params, username)

	oc := observability.NewOperationContext("initiate-auth", username, p.metrics)
	spanCtx, span := oc.Start(ctx, observability.SpanInitiateAuth,
		attribute.String(observability.AttrUserPoolID, p.cfg.UserPoolID))
	out, err := p.api.InitiateAuth(spanCtx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(p.cfg.ClientID),
		AuthParameters: params,
	})
	err = classify("initiate-auth", err)
	oc.End(spanCtx, span, err)
	if err != nil {
		p.log.Warn("authentication failed", logger.MergeWithError(
			logger.Fields(logger.FieldUsername, username), err))
		return auth.Fail(err)
	}

	return p.next(ctx, username, out.AuthenticationResult, out.ChallengeName, out.ChallengeParameters, out.Session)
}

// next turns one InitiateAuth/RespondToAuthChallenge response into an Outcome.
func (p *Pool) next(ctx context.Context, username string, result *types.AuthenticationResultType,
	challenge types.ChallengeNameType, params map[string]string, session *string) auth.Outcome {
	if result != nil {
		sess, err := p.establish(ctx, username, result, "")
		if err != nil {
			return auth.Fail(err)
		}
		p.log.Info("signed in", logger.Fields(logger.FieldUsername, username))
		return auth.Success{Result: sess}
	}

	name := string(challenge)
	if name == "" {
		return auth.Fail(apperrors.New(apperrors.ErrCodeExternalService,
			"cognito-idp returned neither tokens nor a challenge", http.StatusBadGateway))
	}

	// Challenges answered after an alias login must name the canonical user.
	if id := params["USER_ID_FOR_SRP"]; id != "" {
		username = id
	}
	sessionToken := aws.ToString(session)

	p.log.Info("challenge required", logger.Fields(
		logger.FieldUsername, username,
		logger.FieldChallenge, name,
	))
	return auth.ChallengeRequired{
		Name:       name,
		Parameters: auth.ChallengeParameters(params),
		Resume: func(ctx context.Context, answer string) auth.Outcome {
			return p.respond(ctx, username, name, answer, sessionToken)
		},
	}
}

func (p *Pool) respond(ctx context.Context, username, challenge, answer, session string) auth.Outcome {
	responses := map[string]string{"USERNAME": username}
	responses[challengeAnswerKey(challenge)] = answer
	p.addSecretHash(responses, username)

	oc := observability.NewOperationContext("respond-to-auth-challenge", username, p.metrics)
	spanCtx, span := oc.Start(ctx, observability.SpanRespondChallenge,
		attribute.String(observability.AttrChallenge, challenge))
	out, err := p.api.RespondToAuthChallenge(spanCtx, &cip.RespondToAuthChallengeInput{
		ChallengeName:      types.ChallengeNameType(challenge),
		ClientId:           aws.String(p.cfg.ClientID),
		ChallengeResponses: responses,
		Session:            aws.String(session),
	})
	err = classify("respond-to-auth-challenge", err)
	oc.End(spanCtx, span, err)
	if err != nil {
		p.log.Warn("challenge response rejected", logger.MergeWithError(logger.Fields(
			logger.FieldUsername, username,
			logger.FieldChallenge, challenge,
		), err))
		return auth.Fail(err)
	}

	return p.next(ctx, username, out.AuthenticationResult, out.ChallengeName, out.ChallengeParameters, out.Session)
}

// establish stores the tokens of result as username's session and makes
// username the current user. A missing refresh token keeps previousRefresh.
func (p *Pool) establish(ctx context.Context, username string, result *types.AuthenticationResultType, previousRefresh string) (*Session, error) {
	refresh := aws.ToString(result.RefreshToken)
	if refresh == "" {
		refresh = previousRefresh
	}
	sess := NewSession(aws.ToString(result.IdToken), aws.ToString(result.AccessToken), refresh, p.now())

	if err := p.store.Save(ctx, UserKey(p.cfg.ClientID, username), recordFor(username, sess), 0); err != nil {
		return nil, apperrors.StorageError(err)
	}
	if err := p.store.Save(ctx, LastAuthUserKey(p.cfg.ClientID), &Record{Username: username}, 0); err != nil {
		return nil, apperrors.StorageError(err)
	}
	return sess, nil
}

func (p *Pool) addSecretHash(params map[string]string, username string) {
	if p.cfg.HasSecret() {
		params["SECRET_HASH"] = SecretHash(username, p.cfg.ClientID, p.cfg.ClientSecret)
	}
}

// SecretHash is base64(HMAC-SHA256(clientSecret, username+clientID)).
func SecretHash(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func challengeAnswerKey(challenge string) string {
	switch challenge {
	case auth.ChallengeSMSMFA:
		return "SMS_MFA_CODE"
	case auth.ChallengeSoftwareTokenMFA:
		return "SOFTWARE_TOKEN_MFA_CODE"
	case auth.ChallengeEmailOTP:
		return "EMAIL_OTP_CODE"
	case auth.ChallengeNewPassword:
		return "NEW_PASSWORD"
	default:
		return "ANSWER"
	}
}
