package relay

import "errors"

// Send failures. Validation errors are terminal and local: nothing is
// persisted and nothing is emitted to either party. Store errors abort the
// whole send before any emission.
var (
	ErrUnauthenticated  = errors.New("relay: unauthenticated sender")
	ErrEmptyText        = errors.New("relay: message text is empty")
	ErrTextTooLong      = errors.New("relay: message text too long")
	ErrUnknownReceiver  = errors.New("relay: unknown receiver")
	ErrStoreUnavailable = errors.New("relay: message store unavailable")
)

// ErrorCode maps a send failure to its wire error code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrEmptyText),
		errors.Is(err, ErrTextTooLong),
		errors.Is(err, ErrUnknownReceiver):
		return "invalid_input"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
