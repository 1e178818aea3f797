package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/server"
)

func TestComponentLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := &server.Config{Enabled: true, Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0

	srv := server.New(cfg, logger.NewNop())
	srv.RegisterDefaultEndpoints("cognitokit", nil)
	srv.RegisterAPI(func() server.Adapter { return &fakeAdapter{} })
	sc := server.NewComponent(srv)

	if h := sc.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health before Start = %+v", h)
	}
	if err := sc.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() { _ = sc.Stop(ctx) })

	if h := sc.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health after Start = %+v", h)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d", resp.StatusCode)
	}

	routes := sc.Routes()
	if len(routes) != 7 {
		t.Fatalf("Routes() = %+v", routes)
	}
	if routes[0].Path != "/v1/credentials" || routes[0].Method != "GET" || routes[len(routes)-1].Path != "/info" {
		t.Errorf("route order = %+v", routes)
	}
	if d := sc.Describe(); d.Type != "server" || d.Details != srv.Addr() {
		t.Errorf("Describe() = %+v", d)
	}

	if err := sc.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if h := sc.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health after Stop = %+v", h)
	}
}
