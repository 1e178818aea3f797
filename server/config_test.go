package server_test

import (
	"testing"

	"github.com/kbukum/cognitokit/security"
	"github.com/kbukum/cognitokit/server"
)

func TestConfigApplyDefaults(t *testing.T) {
	cfg := server.Config{}
	cfg.ApplyDefaults()
	if cfg.Host != "127.0.0.1" || cfg.Port != 8080 || cfg.MaxBodySize != "64KB" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 || cfg.RateLimit.Burst != 20 {
		t.Errorf("rate limit defaults = %+v", cfg.RateLimit)
	}
	if len(cfg.CORS.AllowedOrigins) != 0 {
		t.Errorf("CORS should stay closed by default, origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     server.Config
		wantErr bool
	}{
		{"disabled is not checked", server.Config{Port: -1}, false},
		{"valid", server.Config{Enabled: true, Port: 9000}, false},
		{"port too large", server.Config{Enabled: true, Port: 70000}, true},
		{"negative timeout", server.Config{Enabled: true, ReadTimeout: -1}, true},
		{"tls cert without key", server.Config{Enabled: true, TLS: security.ServerTLS{CertFile: "cert.pem"}}, true},
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
