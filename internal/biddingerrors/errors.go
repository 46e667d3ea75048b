package biddingerrors

import (
	"errors"
	"fmt"
)

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrUserNoBids      = errors.New("user has not placed any bids")
	ErrNoMessages      = errors.New("no messages found")
	ErrDuplicateBid    = errors.New("duplicate bid")
	ErrAlreadyExists   = errors.New("record already exists")
)

// business logic errors
var (
	ErrInvalidBid        = errors.New("invalid bid")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrAuctionNotActive  = errors.New("auction is not active")
	ErrAlreadyWinner     = errors.New("bidder is already the winner")
	ErrEmptyMessage      = errors.New("empty message")
	ErrDuplicateMessage  = errors.New("duplicate message")
	ErrInvalidAuction    = errors.New("invalid auction")
	ErrStartInPast       = errors.New("start date is in the past")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAuctionLocked     = errors.New("auction has a winner awaiting payment")
	ErrInvalidSchedule   = errors.New("end time must be after start time")
)

// Kind classifies a rejection for callers that render it.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindStateInvariant Kind = "state_invariant"
	KindInternal       Kind = "internal"
)

// Rejection is a typed, user-displayable refusal of an operation.
type Rejection struct {
	kind   Kind
	reason string
	cause  error
}

func newRejection(kind Kind, cause error, format string, args ...any) *Rejection {
	return &Rejection{kind: kind, reason: fmt.Sprintf(format, args...), cause: cause}
}

// Validation builds a ValidationRejection around a sentinel cause.
func Validation(cause error, format string, args ...any) *Rejection {
	return newRejection(KindValidation, cause, format, args...)
}

// Conflict builds a ConflictRejection around a sentinel cause.
func Conflict(cause error, format string, args ...any) *Rejection {
	return newRejection(KindConflict, cause, format, args...)
}

// NotFound builds a NotFoundError around a sentinel cause.
func NotFound(cause error, format string, args ...any) *Rejection {
	return newRejection(KindNotFound, cause, format, args...)
}

// Invariant builds a StateInvariantViolation around a sentinel cause.
func Invariant(cause error, format string, args ...any) *Rejection {
	return newRejection(KindStateInvariant, cause, format, args...)
}

// Error returns the reason, suitable for direct display to the end user.
func (r *Rejection) Error() string {
	if r == nil {
		return "<nil>"
	}
	return r.reason
}

// Unwrap exposes the sentinel for errors.Is.
func (r *Rejection) Unwrap() error {
	if r == nil {
		return nil
	}
	return r.cause
}

// Kind returns the rejection category.
func (r *Rejection) Kind() Kind {
	if r == nil {
		return KindInternal
	}
	return r.kind
}

// Reason returns the human-readable message.
func (r *Rejection) Reason() string {
	if r == nil {
		return ""
	}
	return r.reason
}

// KindOf reports the rejection kind of err, or KindInternal when err is not a Rejection.
func KindOf(err error) Kind {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Kind()
	}
	return KindInternal
}

// IsRejection reports whether err carries a policy rejection rather than an infrastructure failure.
func IsRejection(err error) bool {
	k := KindOf(err)
	return k != KindInternal && k != KindStateInvariant
}
