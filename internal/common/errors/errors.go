package commonerrors

import "errors"

var (
	ErrMissingRequiredEnv   = errors.New("missing required environment variable")
	ErrInvalidSessionSecret = errors.New("SESSION_SECRET must be at least 32 bytes")
	ErrInvalidToken         = errors.New("token is not valid")
	ErrDuplicateID          = errors.New("record with this id already exists")
)
