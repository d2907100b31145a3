package auth

import "errors"

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrTokenExpired     = errors.New("token has expired")
	ErrMissingPrincipal = errors.New("request principal is missing")
	ErrCompanyRequired  = errors.New("token is not bound to a company")
)
