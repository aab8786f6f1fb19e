package game

import (
	"errors"
	"fmt"
)

// Kind classifies an expected, user-facing failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindMalformedConfig
	KindInsufficientResource
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindMalformedConfig:
		return "malformed_configuration"
	case KindInsufficientResource:
		return "insufficient_resource"
	default:
		return "unknown"
	}
}

// Error is a domain error whose message is safe to show to the player.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports malformed admin or client input.
func ValidationError(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

// NotFoundError reports an unknown identifier.
func NotFoundError(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

// MalformedConfigError reports a battle configuration that cannot produce a roster.
func MalformedConfigError(format string, args ...any) error {
	return newError(KindMalformedConfig, format, args...)
}

// InsufficientResourceError reports a blocked action (energy, copies, attacks).
func InsufficientResourceError(format string, args ...any) error {
	return newError(KindInsufficientResource, format, args...)
}

var (
	// ErrBattleOver is returned for any move after Win or Loss.
	ErrBattleOver = errors.New("battle is over")
	// ErrBattleClosed is returned once the player has exited the battle.
	ErrBattleClosed = errors.New("battle has been exited")
	// ErrWrongPhase is returned for player moves outside the player phase.
	ErrWrongPhase = errors.New("not the player phase")
	// ErrStaleChoice is reported when the battle moved on while a choice was pending.
	ErrStaleChoice = errors.New("the battle changed while you were choosing; pick again")
)

// KindOf extracts the domain kind from err, or 0 if err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind checks whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
