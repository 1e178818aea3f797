package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/config"
	"github.com/kbukum/cognitokit/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	routes   []component.Route

	mu      sync.Mutex
	started bool
	stopped bool
	events  *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	m.record("start:" + m.name)
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.record("stop:" + m.name)
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) component.Health {
	h := m.health
	if h.Name == "" {
		h = component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return h
}

func (m *mockComponent) Describe() component.Description {
	return component.Description{Name: m.name, Type: "adapter", Details: "details of " + m.name}
}

func (m *mockComponent) Routes() []component.Route { return m.routes }

func (m *mockComponent) record(e string) {
	if m.events != nil {
		*m.events = append(*m.events, e)
	}
}

func (m *mockComponent) wasStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "cognitokit", Version: "1.0.0"}}
	opts = append([]Option{WithLogger(logger.NewNop()), WithSummaryWriter(io.Discard)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "cognitokit" || app.Version != "1.0.0" {
		t.Errorf("Name = %q, Version = %q", app.Name, app.Version)
	}
	if app.Cfg.Environment != config.EnvDevelopment {
		t.Errorf("defaults should be applied, Environment = %q", app.Cfg.Environment)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Error("registry, logger and summary should be set")
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("gracefulTimeout = %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServiceConfig
	}{
		{"missing name", config.ServiceConfig{}},
		{"bad environment", config.ServiceConfig{Name: "x", Environment: "qa"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewApp(&testConfig{ServiceConfig: tt.cfg}, WithLogger(logger.NewNop())); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(30*time.Second))
	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("gracefulTimeout = %v", app.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t)
	if err := app.RegisterComponent(&mockComponent{name: "cognito"}); err != nil {
		t.Fatalf("RegisterComponent() error: %v", err)
	}
	if err := app.RegisterComponent(&mockComponent{name: "cognito"}); err == nil {
		t.Error("duplicate registration should fail")
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  component.HealthStatus
		wantErr bool
	}{
		{"healthy", component.StatusHealthy, false},
		{"degraded", component.StatusDegraded, true},
		{"unhealthy", component.StatusUnhealthy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			_ = app.RegisterComponent(&mockComponent{
				name:   "redis",
				health: component.Health{Name: "redis", Status: tt.status, Message: "ping"},
			})
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadyCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "redis="+string(tt.status)+"(ping)") {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	var events []string
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "store", events: &events})
	_ = app.RegisterComponent(&mockComponent{name: "cognito", events: &events})
	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		if a != app {
			t.Error("configure callback should receive the app")
		}
		events = append(events, "configure")
		return nil
	})
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask() error: %v", err)
	}

	want := []string{
		"start:store", "start:cognito", "onStart", "configure", "onReady",
		"task", "onStop", "stop:cognito", "stop:store",
	}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v\nwant     %v", events, want)
	}
}

func TestRunTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		setup     func(app *App[*testConfig], c *mockComponent)
		task      error
		wantErr   string
		wantStart bool
	}{
		{"task error", func(*App[*testConfig], *mockComponent) {}, boom, "boom", true},
		{"component start error", func(_ *App[*testConfig], c *mockComponent) { c.startErr = boom }, nil, "initialization failed", false},
		{"start hook error", func(a *App[*testConfig], _ *mockComponent) {
			a.OnStart(func(context.Context) error { return boom })
		}, nil, "onStart hook failed", false},
		{"configure error", func(a *App[*testConfig], _ *mockComponent) {
			a.OnConfigure(func(context.Context, *App[*testConfig]) error { return boom })
		}, nil, "configuration failed", false},
		{"ready hook error", func(a *App[*testConfig], _ *mockComponent) {
			a.OnReady(func(context.Context) error { return boom })
		}, nil, "onReady hook failed", false},
		{"stop error", func(_ *App[*testConfig], c *mockComponent) { c.stopErr = boom }, nil, "failed to stop", true},
		{"stop hook error", func(a *App[*testConfig], _ *mockComponent) {
			a.OnStop(func(context.Context) error { return boom })
		}, nil, "hook 0 failed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			store := &mockComponent{name: "store"}
			c := &mockComponent{name: "cognito"}
			_ = app.RegisterComponent(store)
			_ = app.RegisterComponent(c)
			tt.setup(app, c)

			ran := false
			err := app.RunTask(context.Background(), func(context.Context) error {
				ran = true
				return tt.task
			})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("RunTask() error = %v, want %q", err, tt.wantErr)
			}
			if ran != tt.wantStart {
				t.Errorf("task ran = %v, want %v", ran, tt.wantStart)
			}
			if !store.wasStopped() {
				t.Error("started components should be stopped in every case")
			}
		})
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	err := app.RunTask(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunTask() error = %v, want context.Canceled", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	c := &mockComponent{name: "cognito"}
	_ = app.RegisterComponent(c)

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !c.wasStopped() {
		t.Error("component should be stopped after Run returns")
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sig := app.WaitForSignal(ctx); sig != nil {
		t.Errorf("WaitForSignal() = %v, want nil", sig)
	}
}

func TestSummaryDisplay(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, WithSummaryWriter(&out))
	_ = app.RegisterComponent(&mockComponent{name: "cognito"})
	_ = app.RegisterComponent(&mockComponent{
		name:   "http-server",
		health: component.Health{Name: "http-server", Status: component.StatusUnhealthy, Message: "not listening"},
		routes: []component.Route{{Method: "GET", Path: "/v1/identity"}, {Method: "GET", Path: "/health"}},
	})

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask() error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"cognitokit 1.0.0 started in",
		"[adapter] cognito: details of cognito",
		"Routes (2)",
		"GET    /v1/identity",
		"✓ cognito: healthy",
		"✗ http-server: unhealthy (not listening)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestSummaryDisplayEmpty(t *testing.T) {
	var out bytes.Buffer
	s := NewSummary("cognitoctl", "")
	s.Display(&out, component.NewRegistry())
	if !strings.Contains(out.String(), "cognitoctl dev started") || !strings.Contains(out.String(), "no components registered") {
		t.Errorf("summary = %q", out.String())
	}

	out.Reset()
	s.Display(&out, nil)
	if strings.Contains(out.String(), "Health") {
		t.Errorf("nil registry should print only the header: %q", out.String())
	}
	s.Display(nil, nil)
}
