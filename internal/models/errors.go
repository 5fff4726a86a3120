package models

import "errors"

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrStorageUnavailable = errors.New("storage location unavailable")
	ErrStorageExhausted   = errors.New("no storage location accepted the write")
	ErrVerificationFailed = errors.New("inserted row could not be read back")
)
