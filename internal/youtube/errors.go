package youtube

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dbsmedya/ytcomments/internal/collector"
)

// ErrCommentsDisabled is matched by an APIError for a video whose comments
// are turned off.
var ErrCommentsDisabled = errors.New("comments are disabled for this video")

// APIError is a non-2xx response from the Data API. It matches the collector
// sentinels by error reason through errors.Is.
type APIError struct {
	Status  int
	Message string
	Reasons []string
}

func newAPIError(status int, env *errorEnvelope) *APIError {
	e := &APIError{Status: status}
	if env != nil {
		e.Message = env.Error.Message
		for _, item := range env.Error.Errors {
			if item.Reason != "" {
				e.Reasons = append(e.Reasons, item.Reason)
			}
		}
	}
	return e
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("youtube api: HTTP %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("youtube api: HTTP %d (%s): %s", e.Status, strings.Join(e.Reasons, ","), msg)
}

func (e *APIError) hasReason(reasons ...string) bool {
	for _, r := range reasons {
		if slices.Contains(e.Reasons, r) {
			return true
		}
	}
	return false
}

// Is maps API error reasons onto sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case collector.ErrQuotaExhausted:
		return e.hasReason("quotaExceeded", "dailyLimitExceeded")
	case collector.ErrInvalidPageToken:
		return e.hasReason("invalidPageToken", "processingFailure")
	case ErrCommentsDisabled:
		return e.hasReason("commentsDisabled")
	}
	return false
}
