package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/platform/validation"
)

var ErrSessionActive = errors.New("a session is already active; log out first")

const defaultLogoutTimeout = 5 * time.Second

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServerValidation makes Restore confirm the persisted token with the
// server before accepting it.
func WithServerValidation(enabled bool) Option {
	return func(s *Store) { s.validate = enabled }
}

func WithLogoutTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.logoutTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns the client's single session. Login, Logout and Restore are
// serialized; readers never block on network calls.
type Store struct {
	storage       Storage
	authn         Authenticator
	logger        *slog.Logger
	validate      bool
	logoutTimeout time.Duration
	now           func() time.Time

	op sync.Mutex

	mu        sync.RWMutex
	state     State
	current   Session
	ready     chan struct{}
	readyOnce sync.Once

	lmu       sync.Mutex
	listeners map[int]func(Event)
	nextID    int
}

func New(storage Storage, authn Authenticator, opts ...Option) *Store {
	s := &Store{
		storage:       storage,
		authn:         authn,
		logger:        slog.Default(),
		validate:      true,
		logoutTimeout: defaultLogoutTimeout,
		now:           time.Now,
		state:         StatePending,
		ready:         make(chan struct{}),
		listeners:     make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted session. It always leaves the store ready,
// either authenticated or anonymous; the returned error only reports a
// storage failure.
func (s *Store) Restore(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	if s.state == StateAuthenticated {
		s.mu.Unlock()
		return nil
	}
	s.state = StateRestoring
	s.mu.Unlock()

	restored, err := s.readPersisted(ctx)
	if err != nil || !restored.Authenticated() {
		s.finish(Session{})
		return err
	}

	if !restored.ExpiresAt.IsZero() && !s.now().Before(restored.ExpiresAt) {
		s.logger.Info("persisted session expired", "user_id", restored.UserID)
		s.clearPersisted(ctx)
		s.finish(Session{})
		return nil
	}

	if s.validate && s.authn != nil {
		user, err := s.authn.Me(ctx, restored.Token)
		switch {
		case errors.Is(err, auth.ErrTokenRejected):
			s.logger.Info("persisted session rejected by server", "user_id", restored.UserID)
			s.clearPersisted(ctx)
			s.finish(Session{})
			return nil
		case err != nil:
			s.logger.Warn("session validation failed, keeping restored session", "err", err)
		default:
			if role, perr := auth.ParseRole(string(user.Role)); perr == nil && user.ID != "" {
				user.Role = role
				refreshed := fromLogin(user, restored.Token)
				refreshed.ExpiresAt = restored.ExpiresAt
				restored = refreshed
			}
		}
	}

	s.finish(restored)
	s.emit(Event{Type: EventRestored, Session: restored})
	return nil
}

// Login authenticates and persists a new session. Wrong credentials are a
// normal outcome: false with a nil error. Transport and server failures are
// returned as errors.
func (s *Store) Login(ctx context.Context, email, password string) (bool, error) {
	v := validation.New()
	v.Required("email", email, "is required")
	v.Required("password", password, "is required")
	if err := v.Err(); err != nil {
		return false, err
	}

	s.op.Lock()
	defer s.op.Unlock()

	if s.State() == StateAuthenticated {
		return false, ErrSessionActive
	}

	result, err := s.authn.Login(ctx, strings.TrimSpace(email), password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.Info("login rejected", "email", email)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login: %w", err)
	}

	sess := fromLogin(result.User, result.Token)
	userJSON, err := json.Marshal(sess.User())
	if err != nil {
		return false, fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Put(ctx, map[string]string{UserKey: string(userJSON), TokenKey: sess.Token}); err != nil {
		s.clearPersisted(ctx)
		return false, fmt.Errorf("persist session: %w", err)
	}

	s.finish(sess)
	s.emit(Event{Type: EventLogin, Session: sess})
	return true, nil
}

// Logout ends the session locally and then tells the server on a
// best-effort basis. Memory and both persisted keys are cleared whatever the
// server says.
func (s *Store) Logout(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	prev, wasAuthenticated := s.takeCurrent()
	s.markReady()

	cleanup := context.WithoutCancel(ctx)
	var storeErr error
	if err := s.storage.Delete(cleanup, UserKey, TokenKey); err != nil {
		storeErr = fmt.Errorf("clear persisted session: %w", err)
		s.logger.Error("clear persisted session failed", "err", err)
	}
	if wasAuthenticated {
		s.emit(Event{Type: EventLogout, Session: prev})
	}

	if prev.Token != "" && s.authn != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.logoutTimeout)
		defer cancel()
		if err := s.authn.Logout(callCtx, prev.Token); err != nil {
			s.logger.Warn("server logout failed", "err", err)
		}
	}
	return storeErr
}

// Expire tears the session down after the server rejected its token. It is
// a no-op when no session is active.
func (s *Store) Expire(reason string) {
	s.expire("", reason)
}

// ExpireToken is Expire limited to the session that owns token, so a late
// 401 for an earlier session cannot end a newer one.
func (s *Store) ExpireToken(token, reason string) {
	s.expire(token, reason)
}

func (s *Store) expire(token, reason string) {
	s.mu.Lock()
	if s.state != StateAuthenticated || (token != "" && token != s.current.Token) {
		s.mu.Unlock()
		return
	}
	prev := s.current
	s.current = Session{}
	s.state = StateAnonymous
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.logoutTimeout)
	defer cancel()
	s.clearPersisted(ctx)
	s.logger.Info("session expired", "user_id", prev.UserID, "reason", reason)
	s.emit(Event{Type: EventExpired, Session: prev, Reason: reason})
}

// Current returns a copy of the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.state == StateAuthenticated
}

// Token is the bearer token for outgoing requests, empty when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) Role() (auth.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Role, s.state == StateAuthenticated
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether restoration has finished. Protected views must not
// render before it does.
func (s *Store) Ready() bool {
	state := s.State()
	return state == StateAuthenticated || state == StateAnonymous
}

func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn for session events. Events are delivered
// synchronously, after the transition is visible to readers.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.lmu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) emit(ev Event) {
	s.lmu.Lock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Store) readPersisted(ctx context.Context) (Session, error) {
	token, hasToken, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return Session{}, fmt.Errorf("read persisted token: %w", err)
	}
	rawUser, hasUser, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return Session{}, fmt.Errorf("read persisted user: %w", err)
	}
	if !hasToken && !hasUser {
		return Session{}, nil
	}
	if !hasToken || !hasUser || token == "" {
		s.logger.Warn("persisted session incomplete, clearing")
		s.clearPersisted(ctx)
		return Session{}, nil
	}

	var user auth.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Warn("persisted session corrupt, clearing", "err", err)
		s.clearPersisted(ctx)
		return Session{}, nil
	}
	role, err := auth.ParseRole(string(user.Role))
	if err != nil || user.ID == "" {
		s.logger.Warn("persisted session corrupt, clearing", "err", err)
		s.clearPersisted(ctx)
		return Session{}, nil
	}
	user.Role = role
	return fromLogin(user, token), nil
}

func (s *Store) clearPersisted(ctx context.Context) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), UserKey, TokenKey); err != nil {
		s.logger.Error("clear persisted session failed", "err", err)
	}
}

func (s *Store) takeCurrent() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	was := s.state == StateAuthenticated
	s.current = Session{}
	s.state = StateAnonymous
	return prev, was
}

func (s *Store) finish(sess Session) {
	s.mu.Lock()
	s.current = sess
	if sess.Authenticated() {
		s.state = StateAuthenticated
	} else {
		s.state = StateAnonymous
	}
	s.mu.Unlock()
	s.markReady()
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}
