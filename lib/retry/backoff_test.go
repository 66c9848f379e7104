package retry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	{
		// No cap, no delay
		assert.Zero(t, backoff(500, 0, 3))
		assert.Zero(t, backoff(500, -1, 3))
	}
	{
		// The base bounds the early attempts
		for range 50 {
			assert.Less(t, backoff(10, 10_000, 0), 10*time.Millisecond)
			assert.Less(t, backoff(10, 10_000, 2), 40*time.Millisecond)
		}
	}
	{
		// The cap bounds the later ones
		for _, attempt := range []int{10, 64, math.MaxInt} {
			assert.Less(t, backoff(500, 5_000, attempt), 5*time.Second)
		}
	}
	{
		// No base means the cap is used straight away
		assert.Less(t, backoff(0, 100, 0), 100*time.Millisecond)
	}
}
