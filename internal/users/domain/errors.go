package domain

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("role filter must be one of all, admin, user")
	ErrSelfAction   = errors.New("admins cannot change or delete their own account")
)
