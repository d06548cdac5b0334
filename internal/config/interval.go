package config

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	MinRefreshInterval     = 0.5
	MaxRefreshInterval     = 10.0
	DefaultRefreshInterval = 1.0
)

// ClampInterval bounds seconds to the supported refresh range.
func ClampInterval(seconds float64) float64 {
	if math.IsNaN(seconds) || seconds <= 0 {
		return DefaultRefreshInterval
	}
	return math.Min(MaxRefreshInterval, math.Max(MinRefreshInterval, seconds))
}

// Interval is the live refresh interval. It can be changed from any
// goroutine; the scheduler reads it on every scheduling decision.
type Interval struct {
	nanos atomic.Int64
}

func NewInterval(seconds float64) *Interval {
	interval := &Interval{}
	interval.Set(seconds)
	return interval
}

// Set stores the clamped value and returns what was applied.
func (i *Interval) Set(seconds float64) float64 {
	applied := ClampInterval(seconds)
	i.nanos.Store(int64(applied * float64(time.Second)))
	return applied
}

func (i *Interval) Seconds() float64 {
	return i.Interval().Seconds()
}

func (i *Interval) Interval() time.Duration {
	return time.Duration(i.nanos.Load())
}
