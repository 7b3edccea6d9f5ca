package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func up(context.Context) ComponentHealth { return ComponentHealth{Status: StatusUp} }
func degraded(context.Context) ComponentHealth { return ComponentHealth{Status: StatusDegraded} }
func down(context.Context) ComponentHealth { return ComponentHealth{Status: StatusDown, Message: "gone"} }

func TestRunAggregates(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
		want   Status
	}{
		{"empty", nil, StatusUp},
		{"all up", []Check{up, up}, StatusUp},
		{"one degraded", []Check{up, degraded}, StatusDegraded},
		{"down wins", []Check{degraded, down, up}, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for i, ch := range tt.checks {
				c.Register(string(rune('a'+i)), ch)
			}
			r := c.Run(context.Background())
			if r.Status != tt.want {
				t.Errorf("Status = %s, want %s", r.Status, tt.want)
			}
			if len(r.Components) != len(tt.checks) {
				t.Errorf("Components = %d, want %d", len(r.Components), len(tt.checks))
			}
		})
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("index", up)
	c.Register("cache", degraded)

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded status code = %d, want 200", rec.Code)
	}

	c.Register("index", down)
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("down status code = %d, want 503", rec.Code)
	}
}
