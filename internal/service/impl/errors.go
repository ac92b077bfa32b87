package impl

import "errors"

var (
	ErrEmptyPassword   = errors.New("empty password")
	ErrUnsupportedHash = errors.New("unsupported password hash")
	ErrSigningSecrets  = errors.New("token signing secrets must be set and distinct")
)
