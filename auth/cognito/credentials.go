package cognito

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/cognitokit/auth/userpool"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/observability"
)

// CredentialsSource is the aws.Credentials Source of identity pool credentials.
const CredentialsSource = "CognitoIdentityCredentials"

// IdentityAPI is the part of the Cognito identity pool client used here.
type IdentityAPI interface {
	GetId(ctx context.Context, in *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, in *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

var _ IdentityAPI = (*cognitoidentity.Client)(nil)

// NewIdentityAPI builds an unsigned identity pool client for cfg, honoring
// the identity endpoint override.
func NewIdentityAPI(ctx context.Context, cfg *Config) (*cognitoidentity.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return cognitoidentity.NewFromConfig(awsCfg, func(o *cognitoidentity.Options) {
		if cfg.IdentityEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.IdentityEndpoint)
		}
	}), nil
}

// Credentials are identity pool credentials for one set of logins. Nothing
// is fetched until Retrieve is first called; the identity id is then
// resolved once and AWS credentials are cached until shortly before expiry.
type Credentials struct {
	identityPoolID string
	logins         map[string]string
	api            IdentityAPI
	metrics        *observability.Metrics

	mu         sync.Mutex
	identityID string

	cache *aws.CredentialsCache
}

var _ aws.CredentialsProvider = (*Credentials)(nil)

// NewCredentials creates credentials scoped to identityPoolID. logins is copied.
func NewCredentials(identityPoolID string, logins map[string]string, api IdentityAPI) *Credentials {
	c := &Credentials{
		identityPoolID: identityPoolID,
		logins:         maps.Clone(logins),
		api:            api,
	}
	c.cache = aws.NewCredentialsCache(aws.CredentialsProviderFunc(c.fetch), func(o *aws.CredentialsCacheOptions) {
		o.ExpiryWindow = 5 * time.Minute
	})
	return c
}

// IdentityPoolID returns the identity pool the credentials are scoped to.
func (c *Credentials) IdentityPoolID() string { return c.identityPoolID }

// Logins returns a copy of the logins map.
func (c *Credentials) Logins() map[string]string { return maps.Clone(c.logins) }

// IdentityID returns the resolved identity id, or "" before the first
// successful Retrieve.
func (c *Credentials) IdentityID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identityID
}

// Retrieve returns AWS credentials for the identity, from cache when fresh.
func (c *Credentials) Retrieve(ctx context.Context) (aws.Credentials, error) {
	return c.cache.Retrieve(ctx)
}

// Invalidate drops cached AWS credentials; the identity id is kept.
func (c *Credentials) Invalidate() {
	c.cache.Invalidate()
}

func (c *Credentials) fetch(ctx context.Context) (aws.Credentials, error) {
	id, err := c.resolveIdentity(ctx)
	if err != nil {
		return aws.Credentials{}, err
	}

	oc := observability.NewOperationContext("get-credentials-for-identity", "", c.metrics)
	spanCtx, span := oc.Start(ctx, observability.SpanGetCredentials,
		attribute.String(observability.AttrIdentityPoolID, c.identityPoolID))
	out, err := c.api.GetCredentialsForIdentity(spanCtx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: aws.String(id),
		Logins:     c.logins,
	})
	err = userpool.ClassifyAPIError("cognito-identity", "get-credentials-for-identity", err)
	if err == nil && (out == nil || out.Credentials == nil) {
		err = apperrors.ExternalServiceError("cognito-identity", errors.New("no credentials in response"))
	}
	oc.End(spanCtx, span, err)
	if err != nil {
		return aws.Credentials{}, err
	}

	if newID := aws.ToString(out.IdentityId); newID != "" && newID != id {
		c.mu.Lock()
		c.identityID = newID
		c.mu.Unlock()
	}

	creds := aws.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Source:          CredentialsSource,
	}
	if out.Credentials.Expiration != nil {
		creds.CanExpire = true
		creds.Expires = *out.Credentials.Expiration
	}
	return creds, nil
}

// resolveIdentity calls GetId at most once per successful resolution.
func (c *Credentials) resolveIdentity(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identityID != "" {
		return c.identityID, nil
	}

	oc := observability.NewOperationContext("get-id", "", c.metrics)
	spanCtx, span := oc.Start(ctx, observability.SpanGetID,
		attribute.String(observability.AttrIdentityPoolID, c.identityPoolID))
	out, err := c.api.GetId(spanCtx, &cognitoidentity.GetIdInput{
		IdentityPoolId: aws.String(c.identityPoolID),
		Logins:         c.logins,
	})
	err = userpool.ClassifyAPIError("cognito-identity", "get-id", err)
	if err == nil && (out == nil || aws.ToString(out.IdentityId) == "") {
		err = apperrors.ExternalServiceError("cognito-identity", errors.New("no identity id in response"))
	}
	oc.End(spanCtx, span, err)
	if err != nil {
		return "", err
	}

	c.identityID = aws.ToString(out.IdentityId)
	return c.identityID, nil
}
