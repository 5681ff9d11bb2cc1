package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/AngelCh415/studio-metrics/internal/telemetry"
	"github.com/AngelCh415/studio-metrics/internal/utils"
)

// GetWithRetry downloads url, retrying transport errors, 429 and 5xx with
// exponential backoff plus jitter.
func GetWithRetry(ctx context.Context, c HTTPClient, url string, limit int64, bo utils.Backoff) ([]byte, error) {
	var body []byte
	err := bo.Do(ctx, func(int) error {
		b, err := getBytes(ctx, c, url, limit)
		if err == nil {
			body = b
			return nil
		}
		var se *statusError
		if errors.Is(err, ErrEmptyURL) || (errors.As(err, &se) && !se.retryable()) {
			return utils.Permanent(err)
		}
		return err
	})
	if err != nil {
		telemetry.RemoteFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	telemetry.RemoteFetches.WithLabelValues("ok").Inc()
	return body, nil
}

// DefaultBackoff gives three attempts starting at 100ms.
func DefaultBackoff() utils.Backoff {
	return utils.NewBackoff(100*time.Millisecond, 2).WithJitter(150 * time.Millisecond)
}
