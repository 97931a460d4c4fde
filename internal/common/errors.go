// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. The typed errors below match them through errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrPrecondition = errors.New("precondition failed")
	ErrRemote       = errors.New("remote request failed")

	// ErrReentrantMutation is returned when a state mutator runs while another is still executing.
	ErrReentrantMutation = errors.New("reentrant state mutation")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NotFoundError reports an operation on an entity id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PreconditionError reports an action attempted without the state it requires,
// such as adding a transaction while no account is active.
type PreconditionError struct {
	Action string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Action, e.Reason)
}

// Is matches ErrPrecondition.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// RemoteFailure reports a transport error or a non-success status on a remote call.
// StatusCode is zero when no response was received.
type RemoteFailure struct {
	Err        error
	Op         string
	StatusCode int
}

func (e *RemoteFailure) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: server responded %d %s: %v", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: server responded %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": remote request failed"
	}
}

func (e *RemoteFailure) Unwrap() error {
	return e.Err
}

// Is matches ErrRemote.
func (e *RemoteFailure) Is(target error) bool {
	return target == ErrRemote
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
	// ReloadRequired is set when local state may now disagree with the server
	// and only a full refresh can restore it.
	ReloadRequired bool
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// NewReloadError creates a user error that tells the user to reload.
func NewReloadError(userMessage string, err error) error {
	return &UserError{
		UserMessage:    userMessage,
		Err:            err,
		ReloadRequired: true,
	}
}

// UserMessage extracts the message meant for the user, falling back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

// NeedsReload reports whether err tells the user a reload is required.
func NeedsReload(err error) bool {
	var userErr *UserError
	return errors.As(err, &userErr) && userErr.ReloadRequired
}

// IsNotFound reports whether err refers to a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable determines if an error should trigger a retry.
// Transport errors and 5xx/429 responses are retryable, 4xx responses and
// cancellations are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var remote *RemoteFailure
	if errors.As(err, &remote) {
		if remote.StatusCode == 0 {
			return true
		}
		return remote.StatusCode == http.StatusTooManyRequests || remote.StatusCode >= 500
	}

	return errors.Is(err, context.DeadlineExceeded)
}
