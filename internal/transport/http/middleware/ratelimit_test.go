package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hrmportal/internal/domain/auth"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

type hit struct {
	method, path, addr, body string
	user                     string
}

func (p hit) send(h http.Handler) *httptest.ResponseRecorder {
	var req *http.Request
	if p.body != "" {
		req = httptest.NewRequest(p.method, p.path, strings.NewReader(p.body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(p.method, p.path, nil)
	}
	req.RemoteAddr = p.addr
	if p.user != "" {
		req = req.WithContext(context.WithValue(req.Context(), ctxKeyUser, auth.UserContext{UserID: p.user, Role: auth.RoleHR}))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitKeys(t *testing.T) {
	tests := []struct {
		name          string
		first, second hit
		want          int
	}{
		{
			name:   "same user from two addresses",
			first:  hit{method: http.MethodPost, path: "/api/payroll/process", addr: "198.51.100.11:2222", user: "user-1"},
			second: hit{method: http.MethodPost, path: "/api/payroll/process", addr: "198.51.100.12:3333", user: "user-1"},
			want:   http.StatusTooManyRequests,
		},
		{
			name:   "two users from one address",
			first:  hit{method: http.MethodGet, path: "/api/employees", addr: "198.51.100.13:1", user: "user-1"},
			second: hit{method: http.MethodGet, path: "/api/employees", addr: "198.51.100.13:2", user: "user-2"},
			want:   http.StatusNoContent,
		},
		{
			name:   "anonymous falls back to the address",
			first:  hit{method: http.MethodPost, path: "/api/auth/login", addr: "203.0.113.10:4444", body: `{"email":"a@example.com"}`},
			second: hit{method: http.MethodPost, path: "/api/auth/login", addr: "203.0.113.10:5555", body: `{"email":"b@example.com"}`},
			want:   http.StatusTooManyRequests,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limited := RateLimit(1, time.Minute)(noContent)
			if rec := tt.first.send(limited); rec.Code != http.StatusNoContent {
				t.Fatalf("first request: expected 204, got %d", rec.Code)
			}
			if rec := tt.second.send(limited); rec.Code != tt.want {
				t.Fatalf("second request: expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRateLimitRefills(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(noContent)
	p := hit{method: http.MethodGet, path: "/api/employees", addr: "192.0.2.20:1111"}

	if rec := p.send(limited); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	rec := p.send(limited)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected Retry-After and X-RateLimit-Reset headers")
	}
	if !strings.Contains(rec.Body.String(), "rate_limited") {
		t.Fatalf("expected error body, got %q", rec.Body.String())
	}

	time.Sleep(50 * time.Millisecond)
	if rec := p.send(limited); rec.Code != http.StatusNoContent {
		t.Fatalf("expected a token after the refill, got %d", rec.Code)
	}
}

func TestSensitiveMutationRateLimit(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent)

	read := hit{method: http.MethodGet, path: "/api/dashboard/stats", addr: "198.51.100.40:8888"}
	for i := 0; i < 6; i++ {
		if rec := read.send(limited); rec.Code != http.StatusNoContent {
			t.Fatalf("read %d should bypass sensitive limits, got %d", i+1, rec.Code)
		}
	}

	email := hit{method: http.MethodPost, path: "/api/payroll/abc/email", addr: "198.51.100.41:9999", user: "hr-1"}
	for i, want := range []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests} {
		if rec := email.send(limited); rec.Code != want {
			t.Fatalf("payslip email %d: expected %d, got %d", i+1, want, rec.Code)
		}
	}

	login := hit{method: http.MethodPost, path: "/api/auth/login", addr: "198.51.100.42:1", body: `{"email":"hr@example.com"}`}
	if rec := login.send(limited); rec.Code != http.StatusNoContent {
		t.Fatalf("first login should pass, got %d", rec.Code)
	}
	other := login
	other.addr = "198.51.100.43:1"
	if rec := other.send(limited); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second login for the same email should be throttled, got %d", rec.Code)
	}
}

func TestClassifyMutation(t *testing.T) {
	tests := []struct {
		method, path string
		want         mutationClass
	}{
		{http.MethodPost, "/api/auth/login", mutationLogin},
		{http.MethodPut, "/api/settings/roles", mutationSensitive},
		{http.MethodPut, "/api/leave/42/status", mutationSensitive},
		{http.MethodPut, "/api/leave/42/cancel", mutationOther},
		{http.MethodGet, "/api/settings/roles", mutationOther},
		{http.MethodPost, "/api/payroll/process/", mutationSensitive},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		if got := classifyMutation(req); got != tt.want {
			t.Fatalf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, got)
		}
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected peer address, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}
