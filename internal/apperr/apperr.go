package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable outcome code attached to every ledger-facing error.
// Callers branch on kinds, never on message text.
type Kind string

const (
	KindInvalidAmount           Kind = "INVALID_AMOUNT"
	KindInvalidTransactionType  Kind = "INVALID_TRANSACTION_TYPE"
	KindMissingWalletReference  Kind = "MISSING_WALLET_REFERENCE"
	KindWalletNotFound          Kind = "WALLET_NOT_FOUND"
	KindInsufficientFunds       Kind = "INSUFFICIENT_FUNDS"
	KindInvalidTransactionState Kind = "INVALID_TRANSACTION_STATE"
	KindTransactionNotFound     Kind = "TRANSACTION_NOT_FOUND"
	KindLockTimeout             Kind = "LOCK_TIMEOUT"
	KindInternal                Kind = "INTERNAL"
)

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two errors when their kinds are equal, so
// errors.Is(err, apperr.New(apperr.KindInsufficientFunds, "")) works.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal wraps an unexpected failure (storage error, aborted unit of work).
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal failure", Err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal for
// anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status the HTTP layer should render.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidAmount, KindInvalidTransactionType, KindMissingWalletReference, KindInvalidTransactionState:
		return http.StatusBadRequest
	case KindWalletNotFound, KindTransactionNotFound:
		return http.StatusNotFound
	case KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case KindLockTimeout:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
