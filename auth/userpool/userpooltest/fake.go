// Package userpooltest provides an in-memory stand-in for the Cognito user
// pool API and helpers to seed a token store.
package userpooltest

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"

	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/provider"
	"github.com/kbukum/cognitokit/testutil"
)

// Operation names recorded by FakeAPI.
const (
	OpInitiateAuth  = "InitiateAuth"
	OpRespond       = "RespondToAuthChallenge"
	OpGlobalSignOut = "GlobalSignOut"
	OpRevokeToken   = "RevokeToken"
)

// FakeAPI implements userpool.API with overridable hooks. Unset
// InitiateAuth and RespondToAuthChallenge hooks fail; the sign-out calls
// succeed.
type FakeAPI struct {
	InitiateAuthFunc  func(ctx context.Context, in *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error)
	RespondFunc       func(ctx context.Context, in *cip.RespondToAuthChallengeInput) (*cip.RespondToAuthChallengeOutput, error)
	GlobalSignOutFunc func(ctx context.Context, in *cip.GlobalSignOutInput) (*cip.GlobalSignOutOutput, error)
	RevokeTokenFunc   func(ctx context.Context, in *cip.RevokeTokenInput) (*cip.RevokeTokenOutput, error)

	mu    sync.Mutex
	calls []string
}

var _ userpool.API = (*FakeAPI)(nil)

func (f *FakeAPI) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

// Calls returns the operations invoked so far, in order.
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times op was invoked.
func (f *FakeAPI) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

func (f *FakeAPI) InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	f.record(OpInitiateAuth)
	if f.InitiateAuthFunc == nil {
		return nil, APIError("InternalErrorException", "InitiateAuth not configured")
	}
	return f.InitiateAuthFunc(ctx, in)
}

func (f *FakeAPI) RespondToAuthChallenge(ctx context.Context, in *cip.RespondToAuthChallengeInput, _ ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error) {
	f.record(OpRespond)
	if f.RespondFunc == nil {
		return nil, APIError("InternalErrorException", "RespondToAuthChallenge not configured")
	}
	return f.RespondFunc(ctx, in)
}

func (f *FakeAPI) GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, _ ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error) {
	f.record(OpGlobalSignOut)
	if f.GlobalSignOutFunc == nil {
		return &cip.GlobalSignOutOutput{}, nil
	}
	return f.GlobalSignOutFunc(ctx, in)
}

func (f *FakeAPI) RevokeToken(ctx context.Context, in *cip.RevokeTokenInput, _ ...func(*cip.Options)) (*cip.RevokeTokenOutput, error) {
	f.record(OpRevokeToken)
	if f.RevokeTokenFunc == nil {
		return &cip.RevokeTokenOutput{}, nil
	}
	return f.RevokeTokenFunc(ctx, in)
}

// APIError builds a service error as the SDK would return it.
func APIError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

// Result converts test tokens into an authentication result.
func Result(tok testutil.Tokens) *types.AuthenticationResultType {
	res := &types.AuthenticationResultType{
		IdToken:     aws.String(tok.ID),
		AccessToken: aws.String(tok.Access),
		ExpiresIn:   3600,
	}
	if tok.Refresh != "" {
		res.RefreshToken = aws.String(tok.Refresh)
	}
	return res
}

// Config returns a valid pool configuration for tests.
func Config() *userpool.Config {
	return &userpool.Config{
		Region:     "us-east-1",
		UserPoolID: "us-east-1_TestPool",
		ClientID:   "test-client",
	}
}

// SignIn stores tok as username's session and makes username the current
// user, as a completed login would.
func SignIn(t testing.TB, store provider.ContextStore[userpool.Record], clientID, username string, tok testutil.Tokens) {
	t.Helper()
	ctx := context.Background()
	rec := &userpool.Record{
		Username:     username,
		IDToken:      tok.ID,
		AccessToken:  tok.Access,
		RefreshToken: tok.Refresh,
	}
	if err := store.Save(ctx, userpool.UserKey(clientID, username), rec, 0); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if err := store.Save(ctx, userpool.LastAuthUserKey(clientID), &userpool.Record{Username: username}, 0); err != nil {
		t.Fatalf("seed current user: %v", err)
	}
}
