package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned by play mutations issued before the session finished loading
	ErrNotLoaded = errors.New("session not loaded")

	// ErrTemplateUnavailable reports a transient template source failure that
	// outlasted the retry policy. The player may retry.
	ErrTemplateUnavailable = errors.New("template source unavailable")

	// ErrFetchTimeout reports that every fetch attempt timed out
	ErrFetchTimeout = fmt.Errorf("template fetch timed out: %w", ErrTemplateUnavailable)

	// ErrStoreUnavailable reports that a stored session could not be read. The
	// stored progress is left untouched and the player may retry.
	ErrStoreUnavailable = errors.New("session store unavailable")

	ErrInvalidCredentials = errors.New("invalid username or PIN")
	ErrUsernameTaken      = errors.New("username already taken")
)

// PersistenceWriteError describes an autosave write that did not reach the
// local store. It is reported through logs and the error hook only.
type PersistenceWriteError struct {
	Scope string
	Key   string
	Op    string // "set" or "remove"
	Err   error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("autosave %s %s/%s: %v", e.Op, e.Scope, e.Key, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error {
	return e.Err
}
