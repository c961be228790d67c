package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmportal/internal/requestctx"
)

func TestNewAppendsAPIPrefix(t *testing.T) {
	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL())

	c, err = New("http://localhost:8080/api")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL())

	_, err = New("localhost:8080")
	assert.Error(t, err)
}

func TestGetSendsBearerAndRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/employees", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "engineering", r.URL.Query().Get("department"))
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "e1"}})
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithTokenSource(func() string { return "tok-1" }))
	require.NoError(t, err)

	var out []map[string]string
	err = c.Get(context.Background(), "/employees", &out, WithQuery(url.Values{"department": {"engineering"}, "empty": {""}}))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "e1", out[0]["id"])
}

func TestAnonymousAndExplicitToken(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithTokenSource(func() string { return "current" }))
	require.NoError(t, err)

	require.NoError(t, c.Post(context.Background(), "/auth/login", map[string]string{"email": "a"}, nil, Anonymous()))
	require.NoError(t, c.Post(context.Background(), "/auth/logout", nil, nil, WithToken("old")))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "Bearer old"}, seen)
}

func TestErrorMessageDecoding(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		target  error
	}{
		{"flat message", http.StatusBadRequest, `{"code":"invalid_request","message":"startDate is required"}`, "startDate is required", ErrValidation},
		{"nested envelope", http.StatusForbidden, `{"success":false,"error":{"code":"forbidden","message":"insufficient permissions"}}`, "insufficient permissions", ErrForbidden},
		{"no body", http.StatusNotFound, ``, "Not Found", ErrNotFound},
		{"plain text", http.StatusInternalServerError, `boom`, "Internal Server Error", ErrServer},
		{"conflict", http.StatusConflict, `{"message":"duplicate email"}`, "duplicate email", ErrConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			c, err := New(srv.URL)
			require.NoError(t, err)

			err = c.Get(context.Background(), "/anything", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
			assert.Equal(t, tc.message, Message(err))

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestUnauthorizedHookOnlyForAuthenticatedRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"invalid token"}`)
	}))
	defer srv.Close()

	token := "tok"
	c, err := New(srv.URL, WithTokenSource(func() string { return token }))
	require.NoError(t, err)

	var fired int32
	c.OnUnauthorized(func(rejected string, err error) {
		assert.Equal(t, "tok", rejected)
		assert.ErrorIs(t, err, ErrUnauthorized)
		atomic.AddInt32(&fired, 1)
	})

	err = c.Get(context.Background(), "/employees", nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))

	err = c.Post(context.Background(), "/auth/login", nil, nil, Anonymous())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired), "anonymous 401 must not tear down the session")

	token = ""
	_ = c.Get(context.Background(), "/employees", nil)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestUploadAndDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payroll/upload":
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			assert.Equal(t, "3", r.FormValue("month"))
			file, header, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			defer file.Close()
			body, _ := io.ReadAll(file)
			assert.Equal(t, "payroll.csv", header.Filename)
			_ = json.NewEncoder(w).Encode(map[string]int{"imported": strings.Count(string(body), "\n")})
		case "/api/payroll/p1/download":
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="payslip-p1.pdf"`)
			_, _ = io.WriteString(w, "%PDF-1.3")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	var result map[string]int
	err = c.Upload(context.Background(), "/payroll/upload", Upload{
		Filename: "payroll.csv",
		Content:  strings.NewReader("a\nb\n"),
		Fields:   map[string]string{"month": "3"},
	}, &result)
	require.NoError(t, err)
	assert.Equal(t, 2, result["imported"])

	file, err := c.Download(context.Background(), "/payroll/p1/download")
	require.NoError(t, err)
	assert.Equal(t, "payslip-p1.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "%PDF-1.3", string(file.Data))
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c, err := New(addr)
	require.NoError(t, err)
	err = c.Get(context.Background(), "/employees", nil)
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/employees", routeLabel("/employees/42"))
	assert.Equal(t, "/payroll", routeLabel("payroll/period/2024/3"))
	assert.Equal(t, "/", routeLabel("/"))
}

func TestRequestIDPropagatesFromContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "inbound-1", r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := requestctx.WithRequestID(context.Background(), "inbound-1")
	require.NoError(t, c.Get(ctx, "/healthz", nil))
}
