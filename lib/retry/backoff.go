package retry

import (
	"math/rand/v2"
	"time"
)

// Shifting past this would overflow for the base delays we use.
const maxBackoffShift = 30

// backoff returns a random delay between 0 and min(maxMs, baseMs * 2^attempt) milliseconds.
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
func backoff(baseMs, maxMs, attempt int) time.Duration {
	if maxMs <= 0 {
		return 0
	}

	ceiling := maxMs
	if baseMs > 0 {
		ceiling = min(ceiling, baseMs<<min(max(attempt, 0), maxBackoffShift))
	}

	if ceiling <= 0 {
		return 0
	}

	return time.Duration(rand.IntN(ceiling)) * time.Millisecond
}
