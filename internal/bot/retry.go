package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/slackadder/internal/slack"
)

// maxRateLimitRetries bounds how many times a single remote operation is
// retried after rate-limit responses before the failure is surfaced.
const maxRateLimitRetries = 5

// retryOnRateLimit runs op, sleeping and retrying on rate-limit failures up
// to limit times. The wait comes from the server's Retry-After hint, floored
// at one second. Every other error class is returned to the caller
// unmodified on the first attempt.
func retryOnRateLimit(ctx context.Context, limit int, op func() error) error {
	for attempt := 1; ; attempt++ {
		err := op()

		var apiErr *slack.APIError
		if err == nil || !errors.As(err, &apiErr) || !apiErr.RateLimited() {
			return err
		}
		if attempt > limit {
			return err
		}

		wait := apiErr.RetryAfter
		if wait < time.Second {
			wait = time.Second
		}
		slog.Warn("rate limit hit, retrying",
			"method", apiErr.Method,
			"wait", wait,
			"attempt", attempt,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
