package service

import "errors"

// Matchmaking errors
var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidCapacity   = errors.New("invalid match capacity")
	ErrUnknownActivity   = errors.New("unknown activity type")
	ErrMatchNotFound     = errors.New("match not found")
	ErrIncompatibleMatch = errors.New("incompatible match")
	ErrAlreadyMatched    = errors.New("user already in an active match")
	ErrUnauthenticated   = errors.New("caller is not authenticated")
	ErrNotMember         = errors.New("user is not a member of the match")
	ErrMatchClosed       = errors.New("match already closed")
)

// User service errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
)
