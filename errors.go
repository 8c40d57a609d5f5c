package bitsieve

import (
	"errors"
	"fmt"

	"github.com/hupe1980/bitsieve/internal/bitset"
	"github.com/hupe1980/bitsieve/resource"
)

var (
	// ErrInvalidBound is returned when the bound is below 2.
	ErrInvalidBound = errors.New("bound must be at least 2")

	// ErrCapacityExceeded is returned when the bound does not fit the configured storage.
	ErrCapacityExceeded = errors.New("bound exceeds storage capacity")

	// ErrMemoryLimitExceeded is returned when the storage does not fit the shared memory budget.
	ErrMemoryLimitExceeded = errors.New("sieve storage exceeds memory limit")

	// ErrClosed is returned when running an engine after Close.
	ErrClosed = errors.New("engine is closed")

	// ErrNilReporter is returned when Run is called without a reporter.
	ErrNilReporter = errors.New("reporter must not be nil")
)

// BoundError indicates a bound that cannot be sieved with the configured storage.
//
// errors.Is matches it against ErrInvalidBound or ErrCapacityExceeded.
// The original underlying error (if any) can be accessed via errors.Unwrap.
type BoundError struct {
	Bound    uint32
	Capacity uint32
	cause    error
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("invalid bound %d (capacity %d): %v", e.Bound, e.Capacity, e.cause)
}

func (e *BoundError) Unwrap() error { return e.cause }

func translateError(err error, bound, capacity uint32) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, bitset.ErrBoundTooSmall):
		return &BoundError{Bound: bound, Capacity: capacity, cause: fmt.Errorf("%w: %w", ErrInvalidBound, err)}
	case errors.Is(err, bitset.ErrCapacityExceeded):
		return &BoundError{Bound: bound, Capacity: capacity, cause: fmt.Errorf("%w: %w", ErrCapacityExceeded, err)}
	case errors.Is(err, bitset.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}

	return err
}
