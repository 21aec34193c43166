package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenExpired           = errors.New("token has expired")
	ErrUserIDRequired         = errors.New("user id is required")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
