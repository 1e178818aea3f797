package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		healths    []component.Health
		wantCode   int
		wantStatus observability.HealthStatus
	}{
		{"no components", nil, http.StatusOK, observability.HealthStatusUp},
		{"all healthy", []component.Health{{Name: "cognito", Status: component.StatusHealthy}}, http.StatusOK, observability.HealthStatusUp},
		{"degraded", []component.Health{{Name: "redis", Status: component.StatusDegraded}}, http.StatusOK, observability.HealthStatusDegraded},
		{"unhealthy", []component.Health{
			{Name: "cognito", Status: component.StatusHealthy},
			{Name: "redis", Status: component.StatusUnhealthy},
		}, http.StatusServiceUnavailable, observability.HealthStatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(Health("cognitokit", func(context.Context) []component.Health { return tt.healths }))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body observability.ServiceHealth
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Status != tt.wantStatus || body.Service != "cognitokit" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	rec := serve(Info("cognitokit"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Service string `json:"service"`
		Build   struct {
			Version string `json:"version"`
		} `json:"build"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Service != "cognitokit" || body.Build.Version == "" {
		t.Errorf("body = %+v", body)
	}
}
