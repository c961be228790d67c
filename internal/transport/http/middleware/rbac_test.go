package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hrmportal/internal/domain/auth"
)

func TestRequirePermission(t *testing.T) {
	matrix := auth.NewMatrixStore(auth.DefaultMatrix())
	handler := RequirePermission(auth.CapPayrollApprove, matrix)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		user *auth.UserContext
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"admin", &auth.UserContext{UserID: "1", Role: auth.RoleAdmin}, http.StatusNoContent},
		{"hr", &auth.UserContext{UserID: "2", Role: auth.RoleHR}, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if tc.user != nil {
			req = req.WithContext(WithUser(req.Context(), *tc.user))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}

	matrix.Update(auth.DefaultMatrix().With(auth.RoleHR, auth.CapPayrollApprove, true))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "2", Role: auth.RoleHR}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected matrix update to grant hr, got %d", rec.Code)
	}
}
