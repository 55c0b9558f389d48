package domain

import "errors"

var (
	// ErrUserNotFound is returned when a user identifier is unknown.
	ErrUserNotFound = errors.New("user not found")
	// ErrModuleNotFound indicates the module catalog has no such entry.
	ErrModuleNotFound = errors.New("module not found")
	// ErrDrillNotFound indicates an unknown drill scenario.
	ErrDrillNotFound = errors.New("drill not found")
	// ErrAnswerCountMismatch is returned when a submission's answer count
	// differs from the module's question count.
	ErrAnswerCountMismatch = errors.New("answers length does not match quiz length")
	// ErrEmailTaken is returned on registration with an already used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidRole rejects registration with an unknown role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStorageUnavailable wraps backing-store I/O failures. Callers surface
	// it as an internal server error; there is no retry or buffering.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
