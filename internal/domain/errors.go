package domain

import "errors"

var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrUnknownAccount  = errors.New("unknown account")
	ErrWrongPassword   = errors.New("wrong password")
	ErrRequestMismatch = errors.New("pending request id mismatch")
	ErrTokenNotFound   = errors.New("session token not found")
)
