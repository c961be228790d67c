package auth

import "errors"

var (
	ErrUnknownRole         = errors.New("unknown role")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenRejected       = errors.New("token rejected")
	ErrMalformedLoginReply = errors.New("malformed login response")
)
