package models

import "errors"

var (
	// ErrNotFound reports an absent template, player or stored session.
	ErrNotFound = errors.New("not found")
	// ErrInvalidData reports a malformed persisted or fetched structure.
	ErrInvalidData = errors.New("invalid data")
)
