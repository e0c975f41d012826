package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Transient reports whether an error is worth one more attempt: network
// failures and provider-side 429/5xx statuses. Context cancellation,
// 4xx rejections, and parse failures are not.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrDecode) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// RetryOnce runs fn and, when it fails transiently, runs it once more
// immediately. The second outcome is final either way.
func RetryOnce(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !Transient(err) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	return fn()
}
