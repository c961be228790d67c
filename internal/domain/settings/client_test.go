package settings

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmportal/internal/domain/auth"
	apiclient "hrmportal/internal/transport/http/client"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRolesAcceptsBothShapes(t *testing.T) {
	bare := `[{"role":"employee","permissions":{"leave":{"view":true,"apply":true}}}]`
	wrapped := `{"roles":` + bare + `}`

	for _, body := range []string{bare, wrapped} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))

		api, err := apiclient.New(srv.URL)
		require.NoError(t, err)
		m, err := NewClient(api, quietLogger()).Roles(context.Background())
		srv.Close()
		require.NoError(t, err)

		assert.True(t, m.Can(auth.RoleEmployee, auth.ModuleLeave, auth.ActionApply))
		assert.False(t, m.Can(auth.RoleEmployee, auth.ModulePayroll, auth.ActionView), "omitted entries are denied")
		assert.False(t, m.Can(auth.RoleAdmin, auth.ModuleSettings, auth.ActionEdit), "omitted roles are denied")
	}
}

func TestSaveRolesSendsTotalMatrix(t *testing.T) {
	var received RolesPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&received)) {
			return
		}
		_ = json.NewEncoder(w).Encode(received)
	}))
	defer srv.Close()

	api, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	want := auth.DefaultMatrix().With(auth.RoleHR, auth.CapLeaveApprove, false)
	got, err := NewClient(api, quietLogger()).SaveRoles(context.Background(), want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.Len(t, received.Roles, 3)
	for _, entry := range received.Roles {
		total := 0
		for _, actions := range entry.Permissions {
			total += len(actions)
		}
		assert.Equal(t, len(auth.Capabilities()), total)
	}
}

func TestUpdateCompanyValidatesFirst(t *testing.T) {
	api, err := apiclient.New("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = NewClient(api, quietLogger()).UpdateCompany(context.Background(), Company{Email: "ops"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}
