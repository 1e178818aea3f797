package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", buf)
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("invalid level should fall back to info and drop debug lines")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected info line to be written")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewWithWriterJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug").WithComponent("cognito")
	l.Warn("session invalid", Fields(FieldTokenKind, "id", FieldUsername, "alice"))

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	want := map[string]string{
		"level":        "warn",
		"message":      "session invalid",
		FieldComponent: "cognito",
		FieldTokenKind: "id",
		FieldUsername:  "alice",
		"service":      "test-svc",
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("field %q = %v, want %q", k, line[k], v)
		}
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	l.WithContext(ctx).Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("expected request_id in %q", out)
	}
	if !strings.Contains(out, `"correlation_id":"corr-1"`) {
		t.Errorf("expected correlation_id in %q", out)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")
	l.WithError(fmt.Errorf("boom")).Error("failed")
	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got %q", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("nothing")
	l.WithComponent("x").Error("still nothing")
}

func TestInit(t *testing.T) {
	Init(Config{Level: "info", Format: "console", Output: "stdout", ServiceName: "cognitoctl"})
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if gl.service != "cognitoctl" {
		t.Errorf("expected service 'cognitoctl', got %q", gl.service)
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	l := GetGlobalLogger()
	if l == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	defer Reset()
	l := NewDefault("custom-component")
	Register("my-component", l)

	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
}

func TestGetUnregistered(t *testing.T) {
	if Get("unregistered-component") == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestRegisterDefaults(t *testing.T) {
	defer Reset()
	Init(Config{Level: "info", Format: "json", Output: "stdout"})
	RegisterDefaults()

	for _, name := range []string{"cognito", "userpool", "state"} {
		registry.mu.RLock()
		_, ok := registry.loggers[name]
		registry.mu.RUnlock()
		if !ok {
			t.Errorf("expected %q to be registered", name)
		}
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{
			"key-value pairs",
			[]interface{}{"op", "refresh", "attempt", 1},
			map[string]interface{}{"op": "refresh", "attempt": 1},
		},
		{
			"odd number of args",
			[]interface{}{"op", "refresh", "trailing"},
			map[string]interface{}{"op": "refresh"},
		},
		{
			"non-string key skipped",
			[]interface{}{123, "value", "key", "val"},
			map[string]interface{}{"key": "val"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Fatalf("expected %d fields, got %d", len(tc.expected), len(result))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	fields := ErrorFields("get-session", fmt.Errorf("network down"))

	if fields[FieldOperation] != "get-session" {
		t.Errorf("expected operation 'get-session', got %v", fields[FieldOperation])
	}
	if fields[FieldError] != "network down" {
		t.Errorf("expected error 'network down', got %v", fields[FieldError])
	}
}

func TestDurationFields(t *testing.T) {
	fields := DurationFields("initiate-auth", 150*time.Millisecond)
	if fields[FieldDuration] != int64(150) {
		t.Errorf("expected duration 150, got %v", fields[FieldDuration])
	}
}

func TestMergeWithError(t *testing.T) {
	err := fmt.Errorf("test error")

	result := MergeWithError(map[string]interface{}{"op": "save"}, err)
	if result[FieldError] != "test error" || result["op"] != "save" {
		t.Errorf("unexpected merge result %v", result)
	}

	if MergeWithError(nil, err)[FieldError] != "test error" {
		t.Error("expected error field from nil map")
	}
}
