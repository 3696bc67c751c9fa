package store

import "errors"

// Sentinel errors returned at the store boundary. Handlers translate these
// to transport status codes; nothing below the handlers knows about HTTP.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)
