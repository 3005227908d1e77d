// Package guard holds in-process admission checks for write operations:
// per-actor rate limits, decision deduplication and a circuit breaker for
// outbound push delivery.
package guard

import "time"

// Clock returns the current time. Tests replace it to move through windows.
type Clock func() time.Time
