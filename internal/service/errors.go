package service

import (
	"errors"

	"forum-system/internal/repository"
)

var (
	// ErrNotFound the requested room, message or user does not exist
	ErrNotFound = errors.New("not found")
	// ErrNotAllowed the current user does not own the record
	ErrNotAllowed = errors.New("not allowed")
	// ErrUserNotFound no account uses the given email
	ErrUserNotFound = errors.New("user does not exist")
	// ErrInvalidCredentials email and password do not match an account
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation submitted data is incomplete or malformed
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate email or username already taken
	ErrDuplicate = errors.New("email or username already taken")
)

// translate maps repository errors onto service errors
func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicate
	}
	return err
}
