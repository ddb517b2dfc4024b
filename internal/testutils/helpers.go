package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Eventually polls fn every few milliseconds until it returns true or the timeout expires.
// It fails the test immediately on timeout.
func Eventually(t *testing.T, timeout time.Duration, fn func() bool, msg string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for {
		if fn() {
			return
		}
		select {
		case <-ctx.Done():
			require.FailNow(t, "condition not met in time", msg)
		case <-ticker.C:
		}
	}
}
