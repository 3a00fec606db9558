package common

import (
	"context"
	"errors"
	"net"
	"time"
)

// IsContextCanceled checks if an error is due to context cancellation
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsTimeout checks if a transport error was caused by a deadline
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// TransportError classifies a failed request as a timeout or a connection error
func TransportError(operation string, err error) error {
	if IsTimeout(err) {
		return TimeoutError(operation, err)
	}
	return ConnectionError(operation, err)
}

// WithTimeout derives a context bounded by timeout, leaving ctx untouched when timeout is zero
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
