package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrChannelNotFound is returned when a channel is not found
	ErrChannelNotFound = errors.New("channel not found")

	// ErrTagNotFound is returned when a tag is not found
	ErrTagNotFound = errors.New("tag not found")

	// ErrSubscriptionNotFound is returned when a subscription is not found
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNotSubscriptionOwner is returned when a user tries to modify a
	// subscription they do not own
	ErrNotSubscriptionOwner = errors.New("subscription is not owned by this user")

	// ErrSubscriptionNotActive is returned when editing a subscription
	// that is inactive or deleted
	ErrSubscriptionNotActive = errors.New("subscription is not active")

	// ErrJoinRequestNotFound is returned when a join request is not found
	ErrJoinRequestNotFound = errors.New("join request not found")

	// ErrJoinRequestTerminal is returned when transitioning a join request
	// that already reached SUCCESS or FAILED
	ErrJoinRequestTerminal = errors.New("join request already in terminal state")

	// ErrInvalidIdentifier is returned when a channel identifier cannot
	// be normalized
	ErrInvalidIdentifier = errors.New("invalid channel identifier")

	// ErrEmptyQuery is returned when a subscription query has no text
	ErrEmptyQuery = errors.New("subscription query text is empty")

	// ErrAlreadyMember is returned by the connector when the account is
	// already a member of the target channel
	ErrAlreadyMember = errors.New("already a member of the channel")

	// ErrNotConnected is returned by the connector when no client session
	// is available
	ErrNotConnected = errors.New("not connected to telegram")

	// ErrEmptyMessage is returned when an inbound event carries no text
	ErrEmptyMessage = errors.New("message has no text content")
)

// RateLimitedError is returned by the connector when Telegram asks the
// caller to back off for a server-specified duration. The queue processor
// treats it as a whole-loop throttle, not a per-request failure.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// AsRateLimited extracts a RateLimitedError from an error chain.
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
