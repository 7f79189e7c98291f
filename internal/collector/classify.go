package collector

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExhausted marks an API error caused by the request quota.
	ErrQuotaExhausted = errors.New("quota exhausted")
	// ErrInvalidPageToken marks an API error caused by a stale or rejected page token.
	ErrInvalidPageToken = errors.New("invalid page token")
)

// FaultKind is the classification of an API call's error.
type FaultKind int

const (
	FaultNone FaultKind = iota
	FaultQuota
	FaultPagination
	FaultFatal
)

func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultQuota:
		return "quota"
	case FaultPagination:
		return "pagination"
	default:
		return "fatal"
	}
}

// Classify maps an API error to a FaultKind by its wrapped sentinel.
// Cancellation is fatal; the run persists and returns it like any other error.
func Classify(err error) FaultKind {
	switch {
	case err == nil:
		return FaultNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FaultFatal
	case errors.Is(err, ErrQuotaExhausted):
		return FaultQuota
	case errors.Is(err, ErrInvalidPageToken):
		return FaultPagination
	default:
		return FaultFatal
	}
}
