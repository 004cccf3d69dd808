package errors

import (
	"errors"
	"fmt"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrRecommenderNotFound = errors.New("recommender not found")
	ErrFeedUnavailable     = errors.New("feed unavailable")
	ErrInvalidFeedFormat   = errors.New("invalid feed format")
	ErrEmptyFeed           = errors.New("feed contains no usable rows")
	ErrCorruptStorageEntry = errors.New("corrupt storage entry")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

// FeedCause classifies a terminal feed-load failure so callers can surface a
// human-readable message per cause.
type FeedCause string

const (
	FeedCauseTimeout   FeedCause = "timeout"
	FeedCauseNetwork   FeedCause = "network"
	FeedCauseMalformed FeedCause = "malformed"
	FeedCauseEmpty     FeedCause = "empty"
)

type FeedError struct {
	Cause    FeedCause
	Attempts int
	Err      error
}

func (e FeedError) Error() string {
	return fmt.Sprintf("feed load failed after %d attempts (%s): %s",
		e.Attempts, e.Cause, e.Err.Error())
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing description for the failure cause.
func (e FeedError) Message() string {
	switch e.Cause {
	case FeedCauseTimeout:
		return "The data source timed out. Please retry."
	case FeedCauseNetwork:
		return "Could not reach the data source. Check your connection and retry."
	case FeedCauseMalformed:
		return "The data source returned an unreadable response. Please retry later."
	case FeedCauseEmpty:
		return "The data source returned no usable rows."
	default:
		return "Failed to load data. Please retry."
	}
}
