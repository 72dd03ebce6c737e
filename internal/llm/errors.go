package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Transport-failure taxonomy. Each sentinel carries a caller-safe message;
// callers branch with errors.Is and own any retry policy.
var (
	// ErrTimeout indicates the engine did not answer within the per-call
	// budget.
	ErrTimeout = errors.New("Request timed out. Please try again.")
	// ErrRateLimited indicates the engine rejected the call for rate
	// limiting.
	ErrRateLimited = errors.New("Service is busy. Please try again in a moment.")
	// ErrConnection indicates the engine could not be reached at all.
	ErrConnection = errors.New("Unable to connect to classification service.")
	// ErrService covers every other engine-side failure.
	ErrService = errors.New("Classification service error. Please try again.")
)

// classifyTransportError maps a request error onto the taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return fmt.Errorf("%w: %v", ErrService, err)
}

// classifyStatusError maps a non-200 HTTP status onto the taxonomy.
func classifyStatusError(statusCode int, body string) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d)", ErrRateLimited, statusCode)
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w (status %d)", ErrTimeout, statusCode)
	default:
		return fmt.Errorf("%w (status %d): %s", ErrService, statusCode, body)
	}
}
