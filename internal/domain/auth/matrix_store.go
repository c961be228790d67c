package auth

import "sync/atomic"

// MatrixStore holds the current permission matrix. Readers always observe a
// whole matrix: Update swaps the pointer, it never edits in place.
type MatrixStore struct {
	current atomic.Pointer[Matrix]
}

func NewMatrixStore(initial Matrix) *MatrixStore {
	s := &MatrixStore{}
	s.current.Store(&initial)
	return s
}

func (s *MatrixStore) Load() Matrix {
	if m := s.current.Load(); m != nil {
		return *m
	}
	return Matrix{}
}

func (s *MatrixStore) Can(role Role, module Module, action Action) bool {
	return s.Load().Can(role, module, action)
}

func (s *MatrixStore) Allows(role Role, c Capability) bool {
	return s.Load().Allows(role, c)
}

func (s *MatrixStore) Update(m Matrix) {
	s.current.Store(&m)
}
