package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"

	"github.com/kbukum/cognitokit/auth"
	"github.com/kbukum/cognitokit/auth/cognito"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/server/middleware"
	"github.com/kbukum/cognitokit/validation"
)

// Adapter is the part of *cognito.Adapter served over HTTP.
type Adapter interface {
	Token(ctx context.Context, kind cognito.TokenKind) auth.TokenResult
	CognitoIdentity() (string, error)
	Credentials(ctx context.Context) (aws.Credentials, error)
	BuildCognitoCreds(idToken string) *cognito.Credentials
	LoginKey() string
	Refresh(ctx context.Context)
}

var _ Adapter = (*cognito.Adapter)(nil)

// AdapterSource returns the adapter, or nil while it is not started.
type AdapterSource func() Adapter

// ContainerCredentials is the response shape of the ECS container
// credentials endpoint, so AWS SDKs can use GET /v1/credentials through
// AWS_CONTAINER_CREDENTIALS_FULL_URI.
type ContainerCredentials struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	Token           string `json:"Token,omitempty"`
	Expiration      string `json:"Expiration,omitempty"`
}

type buildRequest struct {
	IDToken string `json:"id_token" validate:"required,jwt"`
}

// API serves the credential adapter.
type API struct {
	adapter AdapterSource
	log     *logger.Logger
}

// NewAPI creates the handlers.
func NewAPI(adapter AdapterSource, log *logger.Logger) *API {
	return &API{adapter: adapter, log: log}
}

// Register mounts the handlers on r.
func (a *API) Register(r gin.IRouter) {
	r.GET("/identity", a.Identity)
	r.GET("/tokens/:kind", a.Token)
	r.GET("/credentials", a.GetCredentials)
	r.POST("/credentials", a.BuildCredentials)
	r.POST("/session/refresh", a.Refresh)
}

func (a *API) current(c *gin.Context) (Adapter, bool) {
	adapter := a.adapter()
	if adapter == nil {
		RespondWithError(c, apperrors.ServiceUnavailable("credential adapter"))
		return nil, false
	}
	return adapter, true
}

// Identity returns the identity id of the stored credentials. With
// ?resolve=true the credentials are retrieved first so the id is known.
func (a *API) Identity(c *gin.Context) {
	adapter, ok := a.current(c)
	if !ok {
		return
	}
	if c.Query("resolve") == "true" {
		if _, err := adapter.Credentials(c.Request.Context()); err != nil {
			RespondWithError(c, err)
			return
		}
	}
	id, err := adapter.CognitoIdentity()
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"identity_id": id})
}

// Token returns the signed-in user's access, id or refresh token.
func (a *API) Token(c *gin.Context) {
	adapter, ok := a.current(c)
	if !ok {
		return
	}
	kind, err := cognito.ParseTokenKind(c.Param("kind"))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	res := adapter.Token(c.Request.Context(), kind)
	switch res.Status {
	case auth.TokenOK:
		RespondOK(c, gin.H{"kind": kind, "token": res.Token})
	case auth.TokenAbsent:
		RespondWithError(c, apperrors.Unauthorized("no user is signed in"))
	case auth.TokenInvalidSession:
		RespondWithError(c, apperrors.TokenExpired())
	default:
		RespondWithError(c, res.Err)
	}
}

// GetCredentials retrieves AWS credentials for the stored identity.
func (a *API) GetCredentials(c *gin.Context) {
	adapter, ok := a.current(c)
	if !ok {
		return
	}
	creds, err := adapter.Credentials(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}

	out := ContainerCredentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		Token:           creds.SessionToken,
	}
	if creds.CanExpire {
		out.Expiration = creds.Expires.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, out)
}

// BuildCredentials builds and stores identity pool credentials for the
// posted ID token.
func (a *API) BuildCredentials(c *gin.Context) {
	adapter, ok := a.current(c)
	if !ok {
		return
	}
	var req buildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.Validation("request body must be a JSON object").WithCause(err))
		return
	}
	if err := validation.Validate(&req); err != nil {
		RespondWithError(c, err)
		return
	}

	adapter.BuildCognitoCreds(req.IDToken)
	a.log.Info("Identity pool credentials built over HTTP", logger.Fields(
		logger.FieldRequestID, c.GetString(middleware.RequestIDKey),
	))
	RespondCreated(c, gin.H{"login_key": adapter.LoginKey()})
}

// Refresh refreshes the signed-in user's session. The outcome is only logged.
func (a *API) Refresh(c *gin.Context) {
	adapter, ok := a.current(c)
	if !ok {
		return
	}
	adapter.Refresh(c.Request.Context())
	RespondNoContent(c)
}
