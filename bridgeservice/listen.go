package bridgeservice

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Listen binds addr, retrying with exponential backoff for up to window. A
// restarted host may find the previous process still releasing the port.
// A non-positive window makes a single attempt.
func Listen(ctx context.Context, addr string, window time.Duration, log zerolog.Logger) (net.Listener, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 100 * time.Millisecond
	exp.Multiplier = 2
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = window
	exp.Reset()

	var lc net.ListenConfig
	attempts := 0
	for {
		attempts++
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err == nil {
			return ln, nil
		}
		if window <= 0 {
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}

		wait := exp.NextBackOff()
		if wait == backoff.Stop {
			return nil, fmt.Errorf("listen %s after %d attempts: %w", addr, attempts, err)
		}
		log.Warn().Err(err).Str("addr", addr).Dur("retry_in", wait).Msg("bind failed, retrying")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
