package notes

import "errors"

// Validation errors. Nothing is stored when one of these is returned.
var (
	ErrNameMissing   = errors.New("note name is missing")
	ErrNameReserved  = errors.New("note name starts with a reserved character")
	ErrAlreadyExists = errors.New("note already exists")
	ErrCapExceeded   = errors.New("chat note limit reached")
	ErrEmptyContent  = errors.New("note has no text")
	ErrNoData        = errors.New("note has no data")
)

var (
	ErrNotFound = errors.New("note does not exist")
	ErrNoNotes  = errors.New("chat has no notes")
)

var (
	ErrNotAdmin = errors.New("user is not a chat administrator")
	ErrNotOwner = errors.New("user is not the chat owner")
)

// ErrDelivery wraps failures of the message sender.
var ErrDelivery = errors.New("note delivery failed")
