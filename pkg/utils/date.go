package utils

import (
	"time"
)

// TimeNowUTC returns the current wall clock in UTC. Batch timestamps are
// always recorded in UTC so rows keyed by fetch_timestamp compare cleanly
// regardless of where the service runs.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}
