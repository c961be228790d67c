package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apiclient "hrmportal/internal/transport/http/client"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body struct{ Email, Password string }
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Password != "admin123" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"user":{"id":"1","name":"Admin","email":"admin@example.com","role":"ADMIN"},"token":"tok"}`))
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"id":"1","name":"Admin","email":"admin@example.com","role":"admin"}`))
		case "/api/auth/logout":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClientLogin(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()

	api, err := apiclient.New(srv.URL)
	if err != nil {
		t.Fatalf("new api client: %v", err)
	}
	client := NewClient(api)

	result, err := client.Login(context.Background(), "admin@example.com", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.Role != RoleAdmin || result.Token != "tok" {
		t.Fatalf("unexpected login result %+v", result)
	}

	_, err = client.Login(context.Background(), "admin@example.com", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestClientMeAndLogout(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()

	api, err := apiclient.New(srv.URL)
	if err != nil {
		t.Fatalf("new api client: %v", err)
	}
	client := NewClient(api)

	user, err := client.Me(context.Background(), "tok")
	if err != nil || user.ID != "1" {
		t.Fatalf("me: %+v %v", user, err)
	}

	if _, err := client.Me(context.Background(), "stale"); !errors.Is(err, ErrTokenRejected) {
		t.Fatalf("expected token rejected, got %v", err)
	}

	if err := client.Logout(context.Background(), "tok"); !errors.Is(err, apiclient.ErrServer) {
		t.Fatalf("expected server error from logout, got %v", err)
	}
}
