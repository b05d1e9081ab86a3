package user

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("password or email incorrect")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)
