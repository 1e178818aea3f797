package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	citypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentity/types"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"github.com/kbukum/cognitokit/app"
	"github.com/kbukum/cognitokit/auth"
	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/auth/userpool/userpooltest"
	"github.com/kbukum/cognitokit/bootstrap"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/provider"
	"github.com/kbukum/cognitokit/testutil"
)

const (
	clientID   = "test-client"
	identityID = "us-east-1:5c2d1a0b-3333-4444-8555-a66677778888"
)

type fakeIdentity struct{}

func (fakeIdentity) GetId(context.Context, *cognitoidentity.GetIdInput, ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error) {
	return &cognitoidentity.GetIdOutput{IdentityId: aws.String(identityID)}, nil
}

func (fakeIdentity) GetCredentialsForIdentity(_ context.Context, in *cognitoidentity.GetCredentialsForIdentityInput, _ ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error) {
	return &cognitoidentity.GetCredentialsForIdentityOutput{
		IdentityId: in.IdentityId,
		Credentials: &citypes.Credentials{
			AccessKeyId:  aws.String("ASIACLITEST"),
			SecretKey:    aws.String("secretkey"),
			SessionToken: aws.String("sessiontoken"),
			Expiration:   aws.Time(time.Now().Add(time.Hour)),
		},
	}, nil
}

type harness struct {
	cfgFile string
	store   *provider.MemoryStore[userpool.Record]
	users   *userpooltest.FakeAPI
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := `name: cognitoctl
token_store: memory
cognito:
  user_pool_id: us-east-1_TestPool
  client_id: ` + clientID + `
  identity_pool_id: us-east-1:3f2504e0-4f89-41d3-9a0c-0305e82c3301
storage:
  provider: local
  base_path: ` + filepath.Join(dir, "files") + `
`
	path := filepath.Join(dir, "cognitoctl.yml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &harness{
		cfgFile: path,
		store:   provider.NewMemoryStore[userpool.Record](),
		users:   &userpooltest.FakeAPI{},
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := &cli{kitOpts: []app.Option{
		app.WithTokenStore(h.store),
		app.WithCognitoAPIs(h.users, fakeIdentity{}),
		app.WithBootstrapOptions(bootstrap.WithLogger(logger.NewNop())),
	}}
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", h.cfgFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) signIn(t *testing.T, username string) testutil.Tokens {
	t.Helper()
	tok := testutil.ValidTokens(t, username)
	userpooltest.SignIn(t, h.store, clientID, username, tok)
	return tok
}

func TestVersionCmd(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "version", "--json")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if _, ok := info["version"]; !ok {
		t.Errorf("version output = %v", info)
	}
}

func TestLoginThenToken(t *testing.T) {
	h := newHarness(t)
	tok := testutil.ValidTokens(t, "alice")
	h.users.InitiateAuthFunc = func(_ context.Context, in *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
		if in.AuthParameters["USERNAME"] != "alice" || in.AuthParameters["PASSWORD"] != "hunter2" {
			return nil, userpooltest.APIError("NotAuthorizedException", "Incorrect username or password.")
		}
		return &cip.InitiateAuthOutput{AuthenticationResult: userpooltest.Result(tok)}, nil
	}

	out, err := h.run(t, "hunter2\n", "login", "-u", "alice")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if !strings.Contains(out, "Signed in as alice") || !strings.Contains(out, "Identity "+identityID) {
		t.Errorf("login output = %q", out)
	}

	out, err = h.run(t, "", "token", "access")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if strings.TrimSpace(out) != tok.Access {
		t.Errorf("token access = %q", out)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.users.InitiateAuthFunc = func(context.Context, *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
		return nil, userpooltest.APIError("NotAuthorizedException", "Incorrect username or password.")
	}
	_, err := h.run(t, "", "login", "-u", "alice", "-p", "wrong")
	if err == nil || !strings.Contains(err.Error(), "login failed") {
		t.Fatalf("login error = %v", err)
	}
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.ErrCodeUnauthorized {
		t.Errorf("error should wrap an UNAUTHORIZED AppError, got %v", err)
	}
}

func TestLoginMFA(t *testing.T) {
	h := newHarness(t)
	tok := testutil.ValidTokens(t, "alice")
	h.users.InitiateAuthFunc = func(context.Context, *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
		return &cip.InitiateAuthOutput{
			ChallengeName:       "SMS_MFA",
			ChallengeParameters: map[string]string{"CODE_DELIVERY_DESTINATION": "+*******1234"},
			Session:             aws.String("challenge-session"),
		}, nil
	}
	h.users.RespondFunc = func(_ context.Context, in *cip.RespondToAuthChallengeInput) (*cip.RespondToAuthChallengeOutput, error) {
		if in.ChallengeResponses["SMS_MFA_CODE"] != "123456" || aws.ToString(in.Session) != "challenge-session" {
			return nil, userpooltest.APIError("CodeMismatchException", "Invalid code.")
		}
		return &cip.RespondToAuthChallengeOutput{AuthenticationResult: userpooltest.Result(tok)}, nil
	}

	out, err := h.run(t, "123456\n", "login", "-u", "alice", "-p", "hunter2")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if !strings.Contains(out, "Signed in as alice") {
		t.Errorf("login output = %q", out)
	}
	if h.users.CallCount(userpooltest.OpRespond) != 1 {
		t.Errorf("calls = %v", h.users.Calls())
	}
}

func TestTokenErrors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"not signed in", []string{"token", "id"}, "not signed in"},
		{"unknown kind", []string{"token", "session"}, "unknown token kind"},
		{"missing kind", []string{"token"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestTokenExpiredSessionRefreshes(t *testing.T) {
	h := newHarness(t)
	expired := testutil.ExpiredTokens(t, "alice")
	userpooltest.SignIn(t, h.store, clientID, "alice", expired)
	fresh := testutil.ValidTokens(t, "alice")
	h.users.InitiateAuthFunc = func(_ context.Context, in *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
		if in.AuthParameters["REFRESH_TOKEN"] != expired.Refresh {
			return nil, userpooltest.APIError("NotAuthorizedException", "Invalid Refresh Token")
		}
		return &cip.InitiateAuthOutput{AuthenticationResult: userpooltest.Result(fresh)}, nil
	}

	out, err := h.run(t, "", "refresh")
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if !strings.Contains(out, "Session is valid") {
		t.Errorf("refresh output = %q", out)
	}
	out, err = h.run(t, "", "token", "id")
	if err != nil || strings.TrimSpace(out) != fresh.ID {
		t.Errorf("token id = %q, %v", out, err)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "alice")

	out, err := h.run(t, "", "logout")
	if err != nil || !strings.Contains(out, "Signed out alice") {
		t.Fatalf("logout = %q, %v", out, err)
	}
	out, err = h.run(t, "", "logout")
	if err != nil || !strings.Contains(out, "Not signed in") {
		t.Errorf("second logout = %q, %v", out, err)
	}
	if _, err := h.run(t, "", "token", "access"); err == nil {
		t.Error("token after logout should fail")
	}

	h.signIn(t, "bob")
	if _, err := h.run(t, "", "logout", "--global"); err != nil {
		t.Fatalf("logout --global error: %v", err)
	}
	if h.users.CallCount(userpooltest.OpGlobalSignOut) != 1 {
		t.Errorf("calls = %v", h.users.Calls())
	}
	if _, err := h.run(t, "", "logout", "--global", "--revoke"); err == nil {
		t.Error("--global and --revoke are exclusive")
	}
}

func TestIdentity(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "alice")

	out, err := h.run(t, "", "identity")
	if err != nil || strings.TrimSpace(out) != identityID {
		t.Fatalf("identity = %q, %v", out, err)
	}

	out, err = h.run(t, "", "identity", "--credentials")
	if err != nil {
		t.Fatalf("identity --credentials error: %v", err)
	}
	var creds credentialsOutput
	if err := json.Unmarshal([]byte(out), &creds); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if creds.IdentityID != identityID || creds.AccessKeyID != "ASIACLITEST" || creds.Expiration == "" {
		t.Errorf("credentials = %+v", creds)
	}
	if creds.SecretAccessKey != "secr***" || creds.SessionToken != "sessiont***" {
		t.Errorf("secrets should be masked: %+v", creds)
	}

	out, _ = h.run(t, "", "identity", "--credentials", "--show-secrets")
	if !strings.Contains(out, `"secretkey"`) {
		t.Errorf("--show-secrets output = %q", out)
	}
}

func TestIdentityNotSignedIn(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "identity")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeUnauthorized {
		t.Errorf("identity error = %v", err)
	}
}

func TestFiles(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "alice")

	if _, err := h.run(t, "hello files", "files", "put", "-", "docs/notes.txt"); err != nil {
		t.Fatalf("files put error: %v", err)
	}
	out, err := h.run(t, "", "files", "get", "docs/notes.txt")
	if err != nil || out != "hello files" {
		t.Fatalf("files get = %q, %v", out, err)
	}

	out, err = h.run(t, "", "files", "ls")
	if err != nil || !strings.Contains(out, "docs/notes.txt") || !strings.Contains(out, "11") {
		t.Errorf("files ls = %q, %v", out, err)
	}

	local := filepath.Join(t.TempDir(), "copy.txt")
	if _, err := h.run(t, "", "files", "get", "docs/notes.txt", local); err != nil {
		t.Fatalf("files get to file error: %v", err)
	}
	if data, _ := os.ReadFile(local); string(data) != "hello files" {
		t.Errorf("downloaded = %q", data)
	}

	if _, err := h.run(t, "x", "files", "put", "-"); err == nil {
		t.Error("put from stdin without a remote path should fail")
	}
}

func TestChallengeLabel(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"SMS_MFA", map[string]string{"CODE_DELIVERY_DESTINATION": "+***12"}, "Code sent to +***12"},
		{"SOFTWARE_TOKEN_MFA", nil, "Authenticator code"},
		{"NEW_PASSWORD_REQUIRED", nil, "New password"},
		{"CUSTOM_CHALLENGE", nil, "CUSTOM_CHALLENGE code"},
	}
	for _, tt := range tests {
		ch := auth.ChallengeRequired{Name: tt.name, Parameters: auth.ChallengeParameters(tt.params)}
		if got := challengeLabel(ch); got != tt.want {
			t.Errorf("challengeLabel(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
