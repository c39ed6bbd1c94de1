package http

import (
	"context"
	"log/slog"
	"time"
)

// FetchFunc fetches the document at url.
type FetchFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f FetchFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// RetryDelays returns n exponential backoff delays starting at one second:
// 1s, 2s, 4s and so on.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, n)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// Retry wraps fetch so that a failed attempt is retried once per entry in
// delays, waiting that long first. The last error is returned when every
// attempt fails. Each retry is logged at warn level if logger is non-nil.
func Retry(fetch FetchFunc, delays []time.Duration, logger *slog.Logger) FetchFunc {
	return func(ctx context.Context, url string) (string, error) {
		var lastErr error
		for attempt := 0; attempt <= len(delays); attempt++ {
			html, err := fetch(ctx, url)
			if err == nil {
				return html, nil
			}
			lastErr = err

			if attempt == len(delays) {
				break
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}

			if logger != nil {
				logger.Warn("retrying fetch", "url", url, "attempt", attempt+2, "err", err)
			}

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delays[attempt]):
			}
		}
		return "", lastErr
	}
}
