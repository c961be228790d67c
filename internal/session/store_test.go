package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/platform/localstore"
)

type fakeAuth struct {
	mu          sync.Mutex
	token       string
	loginErr    error
	logoutErr   error
	meErr       error
	logoutCalls []string
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (auth.LoginResult, error) {
	if f.loginErr != nil {
		return auth.LoginResult{}, f.loginErr
	}
	if email != "admin@example.com" || password != "admin123" {
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
	return auth.LoginResult{
		User:  auth.User{ID: "1", Name: "Admin User", Email: email, Role: auth.RoleAdmin},
		Token: f.token,
	}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	f.logoutCalls = append(f.logoutCalls, token)
	f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeAuth) Me(_ context.Context, token string) (auth.User, error) {
	if f.meErr != nil {
		return auth.User{}, f.meErr
	}
	return auth.User{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: auth.RoleAdmin}, nil
}

type failingPut struct {
	*localstore.Memory
}

func (failingPut) Put(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func token(t *testing.T, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateToken("test-secret", auth.Claims{UserID: "1", Role: auth.RoleAdmin}, ttl)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func persisted(t *testing.T, store Storage) (user, tok string, hasUser, hasToken bool) {
	t.Helper()
	user, hasUser, err := store.Get(context.Background(), UserKey)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	tok, hasToken, err = store.Get(context.Background(), TokenKey)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	return user, tok, hasUser, hasToken
}

func TestLoginWithValidCredentials(t *testing.T) {
	storage := localstore.NewMemory()
	authn := &fakeAuth{token: token(t, time.Hour)}
	s := New(storage, authn, quiet())

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	ok, err := s.Login(context.Background(), "admin@example.com", "admin123")
	if err != nil || !ok {
		t.Fatalf("expected login, got %v %v", ok, err)
	}

	sess, active := s.Current()
	if !active || sess.Role != auth.RoleAdmin || sess.Token != authn.token {
		t.Fatalf("unexpected session %+v", sess)
	}
	if sess.ExpiresAt.IsZero() {
		t.Fatal("expected expiry from token")
	}
	if !s.Ready() {
		t.Fatal("expected ready after login")
	}

	user, tok, hasUser, hasToken := persisted(t, storage)
	if !hasUser || !hasToken || tok != authn.token || user == "" {
		t.Fatalf("expected both keys persisted, got %q %q", user, tok)
	}
	if len(events) != 1 || events[0].Type != EventLogin {
		t.Fatalf("expected login event, got %+v", events)
	}
}

func TestLoginWithWrongPasswordIsNotAnError(t *testing.T) {
	storage := localstore.NewMemory()
	s := New(storage, &fakeAuth{token: "tok"}, quiet())

	ok, err := s.Login(context.Background(), "admin@example.com", "wrong")
	if err != nil || ok {
		t.Fatalf("expected false,nil got %v %v", ok, err)
	}
	if _, active := s.Current(); active {
		t.Fatal("expected no session")
	}
	if _, _, hasUser, hasToken := persisted(t, storage); hasUser || hasToken {
		t.Fatal("expected nothing persisted")
	}
}

func TestLoginTransportFailureIsAnError(t *testing.T) {
	s := New(localstore.NewMemory(), &fakeAuth{loginErr: errors.New("connection refused")}, quiet())
	ok, err := s.Login(context.Background(), "admin@example.com", "admin123")
	if err == nil || ok {
		t.Fatalf("expected error, got %v %v", ok, err)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	s := New(localstore.NewMemory(), &fakeAuth{}, quiet())
	if _, err := s.Login(context.Background(), "", ""); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSecondLoginNeedsLogout(t *testing.T) {
	s := New(localstore.NewMemory(), &fakeAuth{token: "tok"}, quiet())
	if ok, err := s.Login(context.Background(), "admin@example.com", "admin123"); !ok || err != nil {
		t.Fatalf("login: %v %v", ok, err)
	}
	if _, err := s.Login(context.Background(), "admin@example.com", "admin123"); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
}

func TestLoginPersistFailureLeavesNoSession(t *testing.T) {
	s := New(failingPut{localstore.NewMemory()}, &fakeAuth{token: "tok"}, quiet())
	ok, err := s.Login(context.Background(), "admin@example.com", "admin123")
	if err == nil || ok {
		t.Fatalf("expected persistence error, got %v %v", ok, err)
	}
	if s.Token() != "" {
		t.Fatal("session must not become visible")
	}
}

func TestLogoutClearsStateWhenServerFails(t *testing.T) {
	storage := localstore.NewMemory()
	authn := &fakeAuth{token: "tok", logoutErr: errors.New("503 service unavailable")}
	s := New(storage, authn, quiet())
	if ok, err := s.Login(context.Background(), "admin@example.com", "admin123"); !ok || err != nil {
		t.Fatalf("login: %v %v", ok, err)
	}

	var got []EventType
	s.Subscribe(func(ev Event) { got = append(got, ev.Type) })

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, active := s.Current(); active || s.Token() != "" {
		t.Fatal("expected memory cleared")
	}
	if _, _, hasUser, hasToken := persisted(t, storage); hasUser || hasToken {
		t.Fatal("expected persisted keys cleared")
	}
	if len(authn.logoutCalls) != 1 || authn.logoutCalls[0] != "tok" {
		t.Fatalf("expected server logout with old token, got %v", authn.logoutCalls)
	}
	if len(got) != 1 || got[0] != EventLogout {
		t.Fatalf("expected logout event, got %v", got)
	}

	// Switching identity works after an explicit logout.
	if ok, err := s.Login(context.Background(), "admin@example.com", "admin123"); !ok || err != nil {
		t.Fatalf("re-login: %v %v", ok, err)
	}
}

func seed(t *testing.T, storage Storage, user, tok string) {
	t.Helper()
	if err := storage.Put(context.Background(), map[string]string{UserKey: user, TokenKey: tok}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

const adminJSON = `{"id":"1","name":"Admin User","email":"admin@example.com","role":"admin"}`

func TestRestoreValidSession(t *testing.T) {
	storage := localstore.NewMemory()
	tok := token(t, time.Hour)
	seed(t, storage, adminJSON, tok)
	s := New(storage, &fakeAuth{}, quiet())

	if s.Ready() {
		t.Fatal("must not be ready before restore")
	}
	var restored bool
	s.Subscribe(func(ev Event) { restored = ev.Type == EventRestored })

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.State() != StateAuthenticated || !restored {
		t.Fatalf("expected restored session, state=%s", s.State())
	}
	if role, _ := s.Role(); role != auth.RoleAdmin {
		t.Fatalf("unexpected role %s", role)
	}
}

func TestRestoreDropsExpiredToken(t *testing.T) {
	storage := localstore.NewMemory()
	seed(t, storage, adminJSON, token(t, -time.Minute))
	authn := &fakeAuth{meErr: errors.New("should not be called")}
	s := New(storage, authn, quiet())

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", s.State())
	}
	if _, _, hasUser, hasToken := persisted(t, storage); hasUser || hasToken {
		t.Fatal("expected expired session cleared")
	}
}

func TestRestoreServerRejection(t *testing.T) {
	storage := localstore.NewMemory()
	seed(t, storage, adminJSON, "opaque-token")
	s := New(storage, &fakeAuth{meErr: auth.ErrTokenRejected}, quiet())

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", s.State())
	}
	if _, _, hasUser, hasToken := persisted(t, storage); hasUser || hasToken {
		t.Fatal("expected rejected session cleared")
	}
}

func TestRestoreKeepsSessionWhenServerUnreachable(t *testing.T) {
	storage := localstore.NewMemory()
	seed(t, storage, adminJSON, "opaque-token")
	s := New(storage, &fakeAuth{meErr: errors.New("dial tcp: connection refused")}, quiet())

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.State() != StateAuthenticated || s.Token() != "opaque-token" {
		t.Fatalf("expected session kept, state=%s", s.State())
	}
}

func TestRestoreClearsCorruptPayload(t *testing.T) {
	storage := localstore.NewMemory()
	seed(t, storage, `{"id":`, "tok")
	s := New(storage, &fakeAuth{}, quiet())

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", s.State())
	}
	if _, _, hasUser, hasToken := persisted(t, storage); hasUser || hasToken {
		t.Fatal("expected corrupt session cleared")
	}
}

func TestWaitReady(t *testing.T) {
	s := New(localstore.NewMemory(), &fakeAuth{}, quiet())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wait to block, got %v", err)
	}

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := s.WaitReady(context.Background()); err != nil {
		t.Fatalf("wait ready: %v", err)
	}
	if s.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", s.State())
	}
}

func TestExpireToken(t *testing.T) {
	storage := localstore.NewMemory()
	s := New(storage, &fakeAuth{token: "current"}, quiet())
	if ok, err := s.Login(context.Background(), "admin@example.com", "admin123"); !ok || err != nil {
		t.Fatalf("login: %v %v", ok, err)
	}

	var expired []Event
	s.Subscribe(func(ev Event) {
		if ev.Type == EventExpired {
			expired = append(expired, ev)
		}
	})

	s.ExpireToken("previous", "401 from stale request")
	if s.Token() != "current" {
		t.Fatal("stale 401 must not end the current session")
	}

	s.ExpireToken("current", "token revoked")
	s.Expire("again")
	if s.Token() != "" {
		t.Fatal("expected session ended")
	}
	if len(expired) != 1 || expired[0].Session.Token != "current" || expired[0].Reason != "token revoked" {
		t.Fatalf("expected one expiry event, got %+v", expired)
	}
	if _, _, hasUser, hasToken := persisted(t, storage); hasUser || hasToken {
		t.Fatal("expected persisted keys cleared")
	}
}
