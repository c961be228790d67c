package session

import (
	"context"
	"time"

	"hrmportal/internal/domain/auth"
)

// Durable storage keys. Both are written and cleared together.
const (
	UserKey  = "hrmsUser"
	TokenKey = "hrmsToken"
)

// Session is the authenticated identity held by the running client. Values
// are copies; a session's role never changes while it is active.
type Session struct {
	UserID      string
	DisplayName string
	Email       string
	Role        auth.Role
	Token       string
	AvatarRef   string
	ExpiresAt   time.Time
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

func (s Session) User() auth.User {
	return auth.User{ID: s.UserID, Name: s.DisplayName, Email: s.Email, Role: s.Role, Avatar: s.AvatarRef}
}

func fromLogin(user auth.User, token string) Session {
	s := Session{
		UserID:      user.ID,
		DisplayName: user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Token:       token,
		AvatarRef:   user.Avatar,
	}
	if exp, ok := auth.TokenExpiry(token); ok {
		s.ExpiresAt = exp
	}
	return s
}

// Storage is durable client storage. Put must write all values or none.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Authenticator is the server side of the session: the auth resource client.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (auth.User, error)
}

type State int

const (
	StatePending State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

type EventType string

const (
	EventRestored EventType = "restored"
	EventLogin    EventType = "login"
	EventLogout   EventType = "logout"
	EventExpired  EventType = "expired"
)

// Event reports a session transition. For logout and expiry Session is the
// session that ended.
type Event struct {
	Type    EventType
	Session Session
	Reason  string
}
