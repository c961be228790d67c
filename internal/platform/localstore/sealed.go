package localstore

import (
	"context"
	"fmt"

	"hrmportal/internal/platform/crypto"
)

// Backend is any key/value state store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Sealed encrypts the named keys before they reach the backend. Other keys
// pass through unchanged. A value that cannot be opened, for instance after
// the key changed, reads as missing so the session gets cleared.
type Sealed struct {
	Backend
	sealer *crypto.Sealer
	keys   map[string]bool
}

func NewSealed(backend Backend, sealer *crypto.Sealer, keys ...string) *Sealed {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return &Sealed{Backend: backend, sealer: sealer, keys: set}
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.Backend.Get(ctx, key)
	if err != nil || !ok || !s.keys[key] {
		return v, ok, err
	}
	plain, err := s.sealer.Open(v)
	if err != nil {
		return "", false, nil
	}
	return plain, true, nil
}

func (s *Sealed) Put(ctx context.Context, values map[string]string) error {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if s.keys[k] {
			sealed, err := s.sealer.Seal(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			v = sealed
		}
		out[k] = v
	}
	return s.Backend.Put(ctx, out)
}
