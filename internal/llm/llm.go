package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Options tunes a single generation call.
type Options struct {
	// JSON asks the backend for structured JSON output.
	JSON bool
}

// Client abstracts text-generation backends behind one return contract.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

var (
	// ErrNotConfigured means required backend configuration is absent.
	// Clients fail with it before any network call.
	ErrNotConfigured = errors.New("llm backend not configured")
	// ErrUnavailable covers connection refused, DNS and other network failures.
	ErrUnavailable = errors.New("llm backend unavailable")
	// ErrTimeout means the backend did not answer within the call's timeout.
	ErrTimeout = errors.New("llm backend timeout")
	// ErrMalformedResponse means a 2xx body lacked the expected completion field
	// or was not valid JSON.
	ErrMalformedResponse = errors.New("malformed llm response")
)

// BackendError carries a non-2xx upstream status.
type BackendError struct {
	Status int
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("llm backend returned status %d", e.Status)
}

// TransportError maps an HTTP client error to the gateway taxonomy.
func TransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
