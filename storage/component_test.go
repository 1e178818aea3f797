package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/storage"
	_ "github.com/kbukum/cognitokit/storage/local"
	"github.com/kbukum/cognitokit/storage/storagetest"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"disabled skips checks", storage.Config{Provider: "ftp"}, false},
		{"s3 with bucket", storage.Config{Enabled: true, Provider: "s3", Bucket: "files"}, false},
		{"s3 without bucket", storage.Config{Enabled: true, Provider: "s3"}, true},
		{"local", storage.Config{Enabled: true, Provider: "local"}, false},
		{"unknown provider", storage.Config{Enabled: true, Provider: "ftp"}, true},
		{"bad region", storage.Config{Enabled: true, Provider: "s3", Bucket: "b", Region: "mars"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := storage.Config{Prefix: "users"}
	cfg.ApplyDefaults()
	if cfg.Provider != storage.ProviderS3 || cfg.Prefix != "users/" || cfg.BasePath == "" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestComponentLocal(t *testing.T) {
	ctx := context.Background()
	id := &storagetest.Identity{ID: identityID}
	c := storage.NewComponent(storage.Config{
		Enabled:  true,
		Provider: storage.ProviderLocal,
		BasePath: t.TempDir(),
	}, id, logger.NewNop())

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health before Start = %+v", h)
	}
	if _, err := c.ForIdentity(ctx); err == nil {
		t.Error("ForIdentity before Start should fail")
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(ctx) })
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health after Start = %+v", h)
	}

	files, err := c.ForIdentity(ctx)
	if err != nil {
		t.Fatalf("ForIdentity() error: %v", err)
	}
	if id.Calls() != 1 {
		t.Errorf("credentials should be retrieved before reading the identity, calls = %d", id.Calls())
	}
	if err := files.Upload(ctx, "notes.txt", strings.NewReader("hi")); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	all, err := c.Storage().List(ctx, "")
	if err != nil || len(all) != 1 || all[0].Path != "private/"+identityID+"/notes.txt" {
		t.Errorf("backend List() = %+v, %v", all, err)
	}
	if d := c.Describe(); !strings.Contains(d.Details, "provider=local") {
		t.Errorf("Describe() = %+v", d)
	}
}

func TestComponentIdentityError(t *testing.T) {
	ctx := context.Background()
	c := storage.NewComponent(storage.Config{
		Enabled:  true,
		Provider: storage.ProviderLocal,
		BasePath: t.TempDir(),
	}, &storagetest.Identity{Err: errors.New("no credentials")}, logger.NewNop())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if _, err := c.ForIdentity(ctx); err == nil || !strings.Contains(err.Error(), "no credentials") {
		t.Errorf("ForIdentity() error = %v", err)
	}
}

func TestComponentDisabled(t *testing.T) {
	ctx := context.Background()
	c := storage.NewComponent(storage.Config{}, nil, logger.NewNop())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("Health() = %+v", h)
	}
	if c.Storage() != nil {
		t.Error("disabled component should have no backend")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := &storage.Config{Enabled: true, Provider: "s3", Bucket: "b"}
	// The s3 backend is not imported by this test binary.
	if _, err := storage.New(context.Background(), cfg, nil, logger.NewNop()); err == nil {
		t.Error("expected unregistered provider error")
	}
}
