package domain

import "errors"

var (
	// ErrInvalidCredentials covers both unknown-username and wrong-password at
	// login. The message is deliberately generic so responses cannot be used
	// to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrSimulationNotFound = errors.New("simulation not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")
)
