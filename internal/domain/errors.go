package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrChallengeNotFound is returned for an unknown challenge code.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrNotParticipant is returned when the acting user is not a key in the participant map.
	ErrNotParticipant = errors.New("user is not a participant of this challenge")
	// ErrExpired is returned on any write attempt after the deadline has passed.
	ErrExpired = errors.New("challenge has expired")
	// ErrUnauthorized is returned when a non-creator attempts a creator-gated action.
	ErrUnauthorized = errors.New("only the challenge creator may start it")
	// ErrInvalidState is returned for a transition the lifecycle graph forbids.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrAlreadyFinalized is the InvalidState flavor for a participant who
	// already reached a terminal status and tries to respond again.
	ErrAlreadyFinalized = fmt.Errorf("%w: participant already finalized", ErrInvalidState)
	// ErrInsufficientQuestions is returned when the bank pool is smaller than the requested count.
	ErrInsufficientQuestions = errors.New("not enough questions for the requested configuration")
)

// StoreError wraps an underlying persistence fault. It is the only error
// class callers should treat as retryable; domain rejections above are
// expected control flow.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError builds a StoreError; nil err passes through as nil.
func NewStoreError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Key: key, Err: err}
}

// IsStoreError reports whether any error in the chain is a persistence fault.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
