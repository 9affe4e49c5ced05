package agent

import (
	"math/rand/v2"
	"time"

	"github.com/nerrad567/finger/internal/clock"
)

const (
	jitterFraction = 0.3
	minSleep       = 10 * time.Millisecond
)

// Jitter returns secs varied by up to ±30%, never below 10ms. r is a
// uniform sample in [0, 1).
func Jitter(secs, r float64) time.Duration {
	actual := secs + (r*2-1)*secs*jitterFraction
	d := time.Duration(actual * float64(time.Second))
	if d < minSleep {
		return minSleep
	}
	return d
}

// Sleeper implements the script sleep capability.
type Sleeper struct {
	Clock clock.Clock
	Rand  func() float64
}

// Sleep blocks for a jittered secs and returns the duration slept.
func (s Sleeper) Sleep(secs float64) time.Duration {
	clk := s.Clock
	if clk == nil {
		clk = clock.Real()
	}
	r := s.Rand
	if r == nil {
		r = rand.Float64
	}
	d := Jitter(secs, r())
	clk.Sleep(d)
	return d
}
