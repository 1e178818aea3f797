package app_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity/types"

	"github.com/kbukum/cognitokit/app"
	"github.com/kbukum/cognitokit/auth"
	"github.com/kbukum/cognitokit/auth/cognito"
	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/auth/userpool/userpooltest"
	"github.com/kbukum/cognitokit/bootstrap"
	"github.com/kbukum/cognitokit/config"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/provider"
	"github.com/kbukum/cognitokit/redis/redistest"
	"github.com/kbukum/cognitokit/testutil"
)

const identityID = "eu-west-1:6a1b9a4e-2222-4333-8444-955566667777"

type fakeIdentity struct{}

var _ cognito.IdentityAPI = fakeIdentity{}

func (fakeIdentity) GetId(context.Context, *cognitoidentity.GetIdInput, ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error) {
	return &cognitoidentity.GetIdOutput{IdentityId: aws.String(identityID)}, nil
}

func (fakeIdentity) GetCredentialsForIdentity(_ context.Context, in *cognitoidentity.GetCredentialsForIdentityInput, _ ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error) {
	return &cognitoidentity.GetCredentialsForIdentityOutput{
		IdentityId: in.IdentityId,
		Credentials: &types.Credentials{
			AccessKeyId:  aws.String("ASIAAPPTEST"),
			SecretKey:    aws.String("secret"),
			SessionToken: aws.String("session"),
			Expiration:   aws.Time(time.Now().Add(time.Hour)),
		},
	}, nil
}

func baseConfig() *app.Config {
	return &app.Config{
		ServiceConfig: config.ServiceConfig{Name: "cognitoctl", Version: "1.2.3"},
		Cognito: cognito.Config{
			Config: userpool.Config{
				UserPoolID: "eu-west-1_TestPool",
				ClientID:   "test-client",
			},
			IdentityPoolID: "eu-west-1:0d1d4c1e-1111-4222-8333-944455556666",
		},
		TokenStore: app.TokenStoreMemory,
	}
}

func newKit(t *testing.T, cfg *app.Config, opts ...app.Option) *app.Kit {
	t.Helper()
	opts = append([]app.Option{
		app.WithBootstrapOptions(bootstrap.WithLogger(logger.NewNop()), bootstrap.WithSummaryWriter(io.Discard)),
		app.WithCognitoAPIs(&userpooltest.FakeAPI{}, fakeIdentity{}),
	}, opts...)
	kit, err := app.New(cfg, opts...)
	if err != nil {
		t.Fatalf("app.New() error: %v", err)
	}
	return kit
}

func componentNames(kit *app.Kit) []string {
	var names []string
	for _, c := range kit.Components.All() {
		names = append(names, c.Name())
	}
	return names
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestModulesOrder(t *testing.T) {
	var names []string
	for _, m := range app.Modules {
		names = append(names, m.Name)
	}
	want := []string{"redis", "events", "cognito", "storage", "http-server"}
	if !slices.Equal(names, want) {
		t.Errorf("Modules = %v, want %v", names, want)
	}
}

func TestNewMinimal(t *testing.T) {
	kit := newKit(t, baseConfig())
	if got := componentNames(kit); !slices.Equal(got, []string{"cognito"}) {
		t.Errorf("components = %v, want only cognito", got)
	}
	if kit.Redis != nil || kit.Storage != nil || kit.Server != nil {
		t.Error("disabled modules should leave their fields nil")
	}
	if kit.Adapter() != nil || kit.Pool() != nil {
		t.Error("adapter and pool exist only after start")
	}
	if kit.State == nil {
		t.Error("state store should be created")
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Cognito.IdentityPoolID = ""
	if _, err := app.New(cfg, app.WithBootstrapOptions(bootstrap.WithLogger(logger.NewNop()))); err == nil {
		t.Error("expected a validation error")
	}
}

func TestRunTaskUsesStoredSession(t *testing.T) {
	cfg := baseConfig()
	store := provider.NewMemoryStore[userpool.Record]()
	tok := testutil.ValidTokens(t, "alice")
	userpooltest.SignIn(t, store, cfg.Cognito.ClientID, "alice", tok)

	kit := newKit(t, cfg, app.WithTokenStore(store))
	err := kit.RunTask(context.Background(), func(ctx context.Context) error {
		adapter := kit.Adapter()
		if adapter == nil {
			t.Fatal("adapter should exist while running")
		}
		res := adapter.AccessToken(ctx)
		if res.Status != auth.TokenOK || res.Token != tok.Access {
			t.Errorf("AccessToken() = %+v", res)
		}
		adapter.BuildCognitoCreds(tok.ID)
		creds, err := adapter.Credentials(ctx)
		if err != nil {
			t.Fatalf("Credentials() error: %v", err)
		}
		if creds.AccessKeyID != "ASIAAPPTEST" {
			t.Errorf("AccessKeyID = %q", creds.AccessKeyID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask() error: %v", err)
	}
}

func TestRedisTokenStore(t *testing.T) {
	mini := redistest.NewComponent()
	testutil.T(t).Setup(mini)

	cfg := baseConfig()
	cfg.TokenStore = ""
	cfg.Redis = mini.Config()
	cfg.Encryption.Enabled = true
	cfg.Encryption.Key = "correct horse battery staple"

	kit := newKit(t, cfg)
	if got := componentNames(kit); !slices.Equal(got, []string{"redis", "cognito"}) {
		t.Fatalf("components = %v", got)
	}

	err := kit.RunTask(context.Background(), func(ctx context.Context) error {
		if res := kit.Adapter().IDToken(ctx); res.Status != auth.TokenAbsent {
			t.Errorf("IDToken() with empty store = %+v", res)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask() error: %v", err)
	}
}

func TestStorageAndServer(t *testing.T) {
	cfg := baseConfig()
	cfg.Storage.Enabled = true
	cfg.Storage.Provider = "local"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Server.Enabled = true
	cfg.Server.Port = freePort(t)

	kit := newKit(t, cfg)
	want := []string{"cognito", "storage", "http-server"}
	if got := componentNames(kit); !slices.Equal(got, want) {
		t.Fatalf("components = %v, want %v", got, want)
	}

	err := kit.RunTask(context.Background(), func(ctx context.Context) error {
		if _, err := kit.Storage.ForIdentity(ctx); err == nil {
			t.Error("ForIdentity without credentials should fail")
		}

		kit.Adapter().BuildCognitoCreds(testutil.ValidTokens(t, "bob").ID)
		files, err := kit.Storage.ForIdentity(ctx)
		if err != nil {
			t.Fatalf("ForIdentity() error: %v", err)
		}
		if files.IdentityID() != identityID {
			t.Errorf("IdentityID() = %q", files.IdentityID())
		}
		if err := files.Upload(ctx, "notes.txt", strings.NewReader("hi")); err != nil {
			t.Fatalf("Upload() error: %v", err)
		}

		base := "http://" + kit.Server.Server().Addr()
		resp, err := http.Get(base + "/health")
		if err != nil {
			t.Fatalf("GET /health: %v", err)
		}
		defer resp.Body.Close()
		var health struct {
			Service    string `json:"service"`
			Status     string `json:"status"`
			Components []struct {
				Name string `json:"name"`
			} `json:"components"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("decode health: %v", err)
		}
		if resp.StatusCode != http.StatusOK || health.Service != "cognitoctl" || len(health.Components) != 3 {
			t.Errorf("health = %d %+v", resp.StatusCode, health)
		}

		idResp, err := http.Get(base + "/v1/identity")
		if err != nil {
			t.Fatalf("GET /v1/identity: %v", err)
		}
		defer idResp.Body.Close()
		body, _ := io.ReadAll(idResp.Body)
		if idResp.StatusCode != http.StatusOK || !strings.Contains(string(body), identityID) {
			t.Errorf("identity = %d %s", idResp.StatusCode, body)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask() error: %v", err)
	}
}

func TestEventsModule(t *testing.T) {
	cfg := baseConfig()
	cfg.Server.Enabled = true
	cfg.Server.Events = true
	cfg.Server.Port = freePort(t)

	kit := newKit(t, cfg)
	want := []string{"events", "cognito", "http-server"}
	if got := componentNames(kit); !slices.Equal(got, want) {
		t.Fatalf("components = %v, want %v", got, want)
	}

	err := kit.RunTask(context.Background(), func(ctx context.Context) error {
		url := "http://" + kit.Server.Server().Addr() + "/v1/events?topics=credentials"
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /v1/events: %v", err)
		}
		defer resp.Body.Close()
		r := bufio.NewReader(resp.Body)
		waitFor(t, r, "event: connected")

		kit.Adapter().BuildCognitoCreds(testutil.ValidTokens(t, "carol").ID)
		waitFor(t, r, "event: credentials")
		line, _ := r.ReadString('\n')
		if !strings.Contains(line, `"action":"built"`) {
			t.Errorf("credentials event data = %s", line)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask() error: %v", err)
	}
}

func waitFor(t *testing.T, r *bufio.Reader, want string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if strings.TrimSpace(line) == want {
			return
		}
	}
}
