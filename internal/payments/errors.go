package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindProvider Kind = iota
	KindValidation
	KindInvalidAmount
	KindDeclined
	KindNetwork
	KindMisconfigured
	KindNotFound
)

// Type is the stable machine-readable string rendered to clients.
func (k Kind) Type() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindInvalidAmount:
		return "invalid_amount"
	case KindDeclined:
		return "payment_declined"
	case KindNetwork:
		return "network_error"
	case KindMisconfigured:
		return "provider_misconfigured"
	case KindNotFound:
		return "not_found"
	default:
		return "provider_error"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidAmount:
		return http.StatusBadRequest
	case KindDeclined:
		return http.StatusPaymentRequired
	case KindNetwork, KindProvider:
		return http.StatusBadGateway
	case KindMisconfigured:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is what adapters return. Message is safe to show to clients,
// Err keeps the provider cause for logs only.
type Error struct {
	Kind     Kind
	Provider Name
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, provider Name, msg string, cause error) *Error {
	return &Error{Kind: kind, Provider: provider, Message: msg, Err: cause}
}

// KindOf returns KindProvider for errors that did not come from an adapter.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	return KindProvider
}

// PublicMessage never leaks the wrapped provider cause.
func PublicMessage(err error) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	if KindOf(err) == KindNetwork {
		return "payment provider timed out"
	}
	return "payment provider error"
}
