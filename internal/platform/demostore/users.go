package demostore

import (
	"strings"
	"time"

	"hrmportal/internal/domain/auth"
)

// AddUser registers a login. The password is stored as a bcrypt hash.
func (s *Store) AddUser(user auth.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := s.accounts[key]; exists {
		return ErrConflict
	}
	s.accounts[key] = &account{user: user, hash: hash}
	return nil
}

func (s *Store) Authenticate(email, password string) (auth.User, error) {
	s.mu.RLock()
	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	s.mu.RUnlock()
	if !ok {
		return auth.User{}, auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(acc.hash, password); err != nil {
		return auth.User{}, auth.ErrInvalidCredentials
	}
	return s.withAvatar(acc.user), nil
}

func (s *Store) UserByID(id string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return s.withAvatarLocked(acc.user), nil
		}
	}
	return auth.User{}, ErrNotFound
}

func (s *Store) withAvatar(u auth.User) auth.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withAvatarLocked(u)
}

func (s *Store) withAvatarLocked(u auth.User) auth.User {
	if emp, ok := s.employees[u.ID]; ok && emp.Avatar != "" {
		u.Avatar = emp.Avatar
	}
	return u
}

// Revoke blocks a token id until its own expiry.
func (s *Store) Revoke(tokenID string, until time.Time) {
	if tokenID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = until
}

func (s *Store) IsRevoked(tokenID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[tokenID]
	return ok
}
