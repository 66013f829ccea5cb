package repository

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")
	ErrEmailTaken = errors.New("email already registered")
	ErrPhoneTaken = errors.New("phone already registered")
)
