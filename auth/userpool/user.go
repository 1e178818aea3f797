package userpool

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/observability"
)

// ErrNoSession is returned by GetSession when no tokens are stored for the user.
var ErrNoSession = apperrors.Unauthorized("no session stored for user; sign in first")

// User is a user of the pool. Its session lives in the pool's store.
type User struct {
	pool     *Pool
	username string
}

// Username returns the user's name.
func (u *User) Username() string { return u.username }

// GetSession returns the stored session, refreshing it through the user pool
// when it has expired. The refreshed session is written back to the store.
func (u *User) GetSession(ctx context.Context) (*Session, error) {
	rec, err := u.pool.store.Load(ctx, UserKey(u.pool.cfg.ClientID, u.username))
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	if rec == nil || rec.IDToken == "" || rec.AccessToken == "" {
		return nil, ErrNoSession
	}

	sess := rec.Session()
	if sess.IsValidAt(u.pool.now()) {
		return sess, nil
	}
	if sess.RefreshToken == "" {
		return nil, apperrors.TokenExpired()
	}
	return u.refresh(ctx, sess.RefreshToken)
}

// RefreshSession exchanges the stored refresh token for new tokens even when
// the current ones are still valid.
func (u *User) RefreshSession(ctx context.Context) (*Session, error) {
	rec, err := u.pool.store.Load(ctx, UserKey(u.pool.cfg.ClientID, u.username))
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	if rec == nil || rec.RefreshToken == "" {
		return nil, ErrNoSession
	}
	return u.refresh(ctx, rec.RefreshToken)
}

func (u *User) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	p := u.pool
	params := map[string]string{"REFRESH_TOKEN": refreshToken}
	p.addSecretHash(params, u.username)

	oc := observability.NewOperationContext("refresh-session", u.username, p.metrics)
	spanCtx, span := oc.Start(ctx, observability.SpanRefreshSession)
	out, err := p.api.InitiateAuth(spanCtx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeRefreshTokenAuth,
		ClientId:       aws.String(p.cfg.ClientID),
		AuthParameters: params,
	})
	err = classify("refresh-session", err)
	if err == nil && (out == nil || out.AuthenticationResult == nil) {
		err = apperrors.ExternalServiceError("cognito-idp", errors.New("refresh returned no tokens"))
	}
	oc.End(spanCtx, span, err)

	if err != nil {
		// A revoked or expired refresh token can never succeed again.
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeUnauthorized {
			if clearErr := u.SignOut(ctx); clearErr != nil {
				p.log.Warn("failed to clear rejected session", logger.ErrorFields("sign-out", clearErr))
			}
		}
		return nil, err
	}

	sess, err := p.establish(ctx, u.username, out.AuthenticationResult, refreshToken)
	if err != nil {
		return nil, err
	}
	p.log.Debug("session refreshed", logger.Fields(logger.FieldUsername, u.username))
	return sess, nil
}

// SignOut forgets the user's tokens on this client. The tokens stay valid at
// Cognito until they expire.
func (u *User) SignOut(ctx context.Context) error {
	p := u.pool
	if err := p.store.Delete(ctx, UserKey(p.cfg.ClientID, u.username)); err != nil {
		return apperrors.StorageError(err)
	}

	current, err := p.store.Load(ctx, LastAuthUserKey(p.cfg.ClientID))
	if err != nil {
		return apperrors.StorageError(err)
	}
	if current != nil && current.Username == u.username {
		if err := p.store.Delete(ctx, LastAuthUserKey(p.cfg.ClientID)); err != nil {
			return apperrors.StorageError(err)
		}
	}
	return nil
}

// RevokeSession revokes the refresh token at Cognito, then signs out locally.
func (u *User) RevokeSession(ctx context.Context) error {
	p := u.pool
	rec, err := p.store.Load(ctx, UserKey(p.cfg.ClientID, u.username))
	if err != nil {
		return apperrors.StorageError(err)
	}
	if rec != nil && rec.RefreshToken != "" {
		in := &cip.RevokeTokenInput{
			ClientId: aws.String(p.cfg.ClientID),
			Token:    aws.String(rec.RefreshToken),
		}
		if p.cfg.HasSecret() {
			in.ClientSecret = aws.String(p.cfg.ClientSecret)
		}
		if _, err := p.api.RevokeToken(ctx, in); err != nil {
			return classify("revoke-token", err)
		}
	}
	return u.SignOut(ctx)
}

// GlobalSignOut invalidates every token issued to the user, then signs out
// locally.
func (u *User) GlobalSignOut(ctx context.Context) error {
	sess, err := u.GetSession(ctx)
	if err != nil {
		return err
	}

	p := u.pool
	oc := observability.NewOperationContext("global-sign-out", u.username, p.metrics)
	spanCtx, span := oc.Start(ctx, observability.SpanGlobalSignOut)
	_, err = p.api.GlobalSignOut(spanCtx, &cip.GlobalSignOutInput{AccessToken: aws.String(sess.AccessToken)})
	err = classify("global-sign-out", err)
	oc.End(spanCtx, span, err)
	if err != nil {
		return err
	}

	p.log.Info("signed out globally", logger.Fields(logger.FieldUsername, u.username))
	return u.SignOut(ctx)
}
