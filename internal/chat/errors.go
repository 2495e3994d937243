package chat

import "errors"

var (
	// ErrNotFound indicates the referenced participant or message is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate participant registration.
	ErrConflict = errors.New("name already registered")
	// ErrForbidden indicates a mutation attempted by someone other than the
	// message's author.
	ErrForbidden = errors.New("not the message author")
	// ErrInvalidInput indicates a missing or malformed field, including an
	// unregistered sender on post.
	ErrInvalidInput = errors.New("invalid input")
)
