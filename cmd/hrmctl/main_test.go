package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hrmportal/internal/app/server"
	"hrmportal/internal/platform/config"
	"hrmportal/internal/platform/email"
	"hrmportal/internal/platform/logging"
)

func startServer(t *testing.T) {
	t.Helper()
	srv, err := server.New(context.Background(), config.Config{
		Addr:               ":0",
		JWTSecret:          "hrmctl-test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		SeedDemoData:       true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}, server.WithMailer(&email.Recorder{}), server.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(srv.Close)
	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	t.Setenv("HRM_API_URL", ts.URL)
	t.Setenv("HRM_STATE_PATH", filepath.Join(dir, "state.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	output = "table"
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	teardown()
	return buf.String(), err
}

func passwordFile(t *testing.T, password string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pw")
	if err := os.WriteFile(path, []byte(password+"\n"), 0o600); err != nil {
		t.Fatalf("write password: %v", err)
	}
	return path
}

func TestSessionSurvivesBetweenInvocations(t *testing.T) {
	startServer(t)

	out, err := run(t, "login", "--email", "admin@example.com", "--password-file", passwordFile(t, "admin123"))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "(admin)") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = run(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "admin@example.com") || !strings.Contains(out, "settings.edit") {
		t.Fatalf("whoami missing user or permissions: %q", out)
	}

	out, err = run(t, "employees", "list")
	if err != nil {
		t.Fatalf("employees list: %v", err)
	}
	if !strings.Contains(out, "jane.smith@example.com") {
		t.Fatalf("expected seeded employee in %q", out)
	}

	if _, err := run(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, _ = run(t, "whoami")
	if !strings.Contains(out, "not signed in") {
		t.Fatalf("expected signed out, got %q", out)
	}
}

func TestRejectedLogin(t *testing.T) {
	startServer(t)
	_, err := run(t, "login", "--email", "admin@example.com", "--password-file", passwordFile(t, "wrong"))
	if err == nil || !strings.Contains(err.Error(), "invalid email or password") {
		t.Fatalf("expected rejected login, got %v", err)
	}
}

func TestEmployeeCannotProcessPayroll(t *testing.T) {
	startServer(t)
	if _, err := run(t, "login", "--email", "employee@example.com", "--password-file", passwordFile(t, "employee123")); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err := run(t, "payroll", "process")
	if err == nil {
		t.Fatal("expected permission error")
	}
	if msg := describe(err); !strings.Contains(msg, "cannot approve payroll") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestDescribeWithoutSession(t *testing.T) {
	startServer(t)
	_, err := run(t, "leave", "balance")
	if err == nil || !strings.HasPrefix(describe(err), "not signed in") {
		t.Fatalf("expected not signed in, got %v", err)
	}
}
