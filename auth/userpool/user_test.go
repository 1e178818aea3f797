package userpool_test

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/auth/userpool/userpooltest"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/testutil"
)

func TestGetSessionValid(t *testing.T) {
	api := &userpooltest.FakeAPI{}
	pool, store := newPool(userpooltest.Config(), api)
	tok := testutil.ValidTokens(t, "alice")
	userpooltest.SignIn(t, store, "test-client", "alice", tok)

	sess, err := pool.User("alice").GetSession(context.Background())
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if sess.AccessToken != tok.Access || sess.IDToken != tok.ID || sess.RefreshToken != tok.Refresh {
		t.Errorf("unexpected session %#v", sess)
	}
	if len(api.Calls()) != 0 {
		t.Errorf("valid session must not call Cognito, got %v", api.Calls())
	}
}

func TestGetSessionMissing(t *testing.T) {
	pool, _ := newPool(userpooltest.Config(), &userpooltest.FakeAPI{})

	_, err := pool.User("nobody").GetSession(context.Background())
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeUnauthorized {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestGetSessionRefreshesExpired(t *testing.T) {
	fresh := testutil.ValidTokens(t, "alice")
	fresh.Refresh = ""
	var got *cip.InitiateAuthInput
	api := &userpooltest.FakeAPI{
		InitiateAuthFunc: func(_ context.Context, in *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
			got = in
			return &cip.InitiateAuthOutput{AuthenticationResult: userpooltest.Result(fresh)}, nil
		},
	}
	pool, store := newPool(userpooltest.Config(), api)
	userpooltest.SignIn(t, store, "test-client", "alice", testutil.ExpiredTokens(t, "alice"))
	ctx := context.Background()

	sess, err := pool.User("alice").GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.AuthFlow != types.AuthFlowTypeRefreshTokenAuth {
		t.Errorf("AuthFlow = %s", got.AuthFlow)
	}
	if got.AuthParameters["REFRESH_TOKEN"] != "refresh-alice" {
		t.Errorf("AuthParameters = %v", got.AuthParameters)
	}
	if sess.AccessToken != fresh.Access {
		t.Error("expected refreshed access token")
	}
	if sess.RefreshToken != "refresh-alice" {
		t.Errorf("expected the previous refresh token to be kept, got %q", sess.RefreshToken)
	}

	rec, _ := store.Load(ctx, userpool.UserKey("test-client", "alice"))
	if rec.AccessToken != fresh.Access || rec.RefreshToken != "refresh-alice" {
		t.Errorf("refreshed tokens not stored: %#v", rec)
	}
}

func TestGetSessionExpiredWithoutRefreshToken(t *testing.T) {
	api := &userpooltest.FakeAPI{}
	pool, store := newPool(userpooltest.Config(), api)
	tok := testutil.ExpiredTokens(t, "alice")
	tok.Refresh = ""
	userpooltest.SignIn(t, store, "test-client", "alice", tok)

	_, err := pool.User("alice").GetSession(context.Background())
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeTokenExpired {
		t.Errorf("expected TOKEN_EXPIRED, got %v", err)
	}
	if len(api.Calls()) != 0 {
		t.Errorf("expected no Cognito call, got %v", api.Calls())
	}
}

func TestGetSessionRefreshRejectedClearsUser(t *testing.T) {
	api := &userpooltest.FakeAPI{
		InitiateAuthFunc: func(context.Context, *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
			return nil, userpooltest.APIError("NotAuthorizedException", "Refresh Token has been revoked")
		},
	}
	pool, store := newPool(userpooltest.Config(), api)
	userpooltest.SignIn(t, store, "test-client", "alice", testutil.ExpiredTokens(t, "alice"))
	ctx := context.Background()

	_, err := pool.User("alice").GetSession(ctx)
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if user, _ := pool.CurrentUser(ctx); user != nil {
		t.Errorf("expected rejected user to be signed out, still have %s", user.Username())
	}
}

func TestGetSessionRefreshThrottled(t *testing.T) {
	api := &userpooltest.FakeAPI{
		InitiateAuthFunc: func(context.Context, *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
			return nil, userpooltest.APIError("TooManyRequestsException", "Rate exceeded")
		},
	}
	pool, store := newPool(userpooltest.Config(), api)
	userpooltest.SignIn(t, store, "test-client", "alice", testutil.ExpiredTokens(t, "alice"))
	ctx := context.Background()

	_, err := pool.User("alice").GetSession(ctx)
	if appErr, ok := apperrors.AsAppError(err); !ok || !appErr.Retryable {
		t.Fatalf("expected a retryable error, got %v", err)
	}
	if user, _ := pool.CurrentUser(ctx); user == nil {
		t.Error("throttling must not sign the user out")
	}
}

func TestRefreshSession(t *testing.T) {
	fresh := testutil.ValidTokens(t, "alice")
	api := &userpooltest.FakeAPI{
		InitiateAuthFunc: func(context.Context, *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
			return &cip.InitiateAuthOutput{AuthenticationResult: userpooltest.Result(fresh)}, nil
		},
	}
	pool, store := newPool(userpooltest.Config(), api)
	userpooltest.SignIn(t, store, "test-client", "alice", testutil.ValidTokens(t, "alice"))

	sess, err := pool.User("alice").RefreshSession(context.Background())
	if err != nil {
		t.Fatalf("RefreshSession() error = %v", err)
	}
	if sess.AccessToken != fresh.Access {
		t.Error("expected new tokens")
	}
	if api.CallCount(userpooltest.OpInitiateAuth) != 1 {
		t.Errorf("calls = %v", api.Calls())
	}
}

func TestSignOut(t *testing.T) {
	pool, store := newPool(userpooltest.Config(), &userpooltest.FakeAPI{})
	userpooltest.SignIn(t, store, "test-client", "alice", testutil.ValidTokens(t, "alice"))
	ctx := context.Background()

	if err := pool.User("alice").SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}
}

func TestSignOutOtherUserKeepsCurrent(t *testing.T) {
	pool, store := newPool(userpooltest.Config(), &userpooltest.FakeAPI{})
	userpooltest.SignIn(t, store, "test-client", "alice", testutil.ValidTokens(t, "alice"))
	ctx := context.Background()

	if err := pool.User("bob").SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if user, _ := pool.CurrentUser(ctx); user == nil || user.Username() != "alice" {
		t.Error("signing out another user must keep the current one")
	}
}

func TestRevokeSession(t *testing.T) {
	var revoked string
	api := &userpooltest.FakeAPI{
		RevokeTokenFunc: func(_ context.Context, in *cip.RevokeTokenInput) (*cip.RevokeTokenOutput, error) {
			revoked = aws.ToString(in.Token)
			return &cip.RevokeTokenOutput{}, nil
		},
	}
	pool, store := newPool(userpooltest.Config(), api)
	userpooltest.SignIn(t, store, "test-client", "alice", testutil.ValidTokens(t, "alice"))

	if err := pool.User("alice").RevokeSession(context.Background()); err != nil {
		t.Fatalf("RevokeSession() error = %v", err)
	}
	if revoked != "refresh-alice" {
		t.Errorf("revoked %q", revoked)
	}
	if store.Len() != 0 {
		t.Error("expected local session cleared")
	}
}

func TestGlobalSignOut(t *testing.T) {
	tok := testutil.ValidTokens(t, "alice")
	var accessToken string
	api := &userpooltest.FakeAPI{
		GlobalSignOutFunc: func(_ context.Context, in *cip.GlobalSignOutInput) (*cip.GlobalSignOutOutput, error) {
			accessToken = aws.ToString(in.AccessToken)
			return &cip.GlobalSignOutOutput{}, nil
		},
	}
	pool, store := newPool(userpooltest.Config(), api)
	userpooltest.SignIn(t, store, "test-client", "alice", tok)

	if err := pool.User("alice").GlobalSignOut(context.Background()); err != nil {
		t.Fatalf("GlobalSignOut() error = %v", err)
	}
	if accessToken != tok.Access {
		t.Errorf("GlobalSignOut sent %q", accessToken)
	}
	if store.Len() != 0 {
		t.Error("expected local session cleared")
	}
}

func TestGlobalSignOutFailureKeepsSession(t *testing.T) {
	api := &userpooltest.FakeAPI{
		GlobalSignOutFunc: func(context.Context, *cip.GlobalSignOutInput) (*cip.GlobalSignOutOutput, error) {
			return nil, userpooltest.APIError("InternalErrorException", "boom")
		},
	}
	pool, store := newPool(userpooltest.Config(), api)
	userpooltest.SignIn(t, store, "test-client", "alice", testutil.ValidTokens(t, "alice"))

	err := pool.User("alice").GlobalSignOut(context.Background())
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeExternalService {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("expected session kept, store has %d entries", store.Len())
	}
}

func TestWithClockControlsValidity(t *testing.T) {
	api := &userpooltest.FakeAPI{}
	store := newStore()
	later := time.Now().Add(2 * time.Hour)
	pool := userpool.NewPool(userpooltest.Config(), api, store, nil, userpool.WithClock(func() time.Time { return later }))
	tok := testutil.ValidTokens(t, "alice")
	tok.Refresh = ""
	userpooltest.SignIn(t, store, "test-client", "alice", tok)

	_, err := pool.User("alice").GetSession(context.Background())
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeTokenExpired {
		t.Errorf("expected TOKEN_EXPIRED two hours later, got %v", err)
	}
}
