package flow

import (
	"math/rand/v2"
	"time"
)

// Window is the interval a flow's simulated latency is drawn from.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// DefaultWindows are the latency windows of the three flows.
var DefaultWindows = map[Kind]Window{
	KindIdeas:    {Min: 600 * time.Millisecond, Max: 1400 * time.Millisecond},
	KindVisual:   {Min: 700 * time.Millisecond, Max: 1300 * time.Millisecond},
	KindResearch: {Min: 800 * time.Millisecond, Max: 1300 * time.Millisecond},
}

// DelaySource picks the delay for one delivery.
type DelaySource interface {
	Next(w Window) time.Duration
}

// UniformDelay draws uniformly from [w.Min, w.Max).
type UniformDelay struct{}

func (UniformDelay) Next(w Window) time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + rand.N(w.Max-w.Min)
}

// FixedDelay ignores the window and always returns itself.
type FixedDelay time.Duration

func (d FixedDelay) Next(Window) time.Duration {
	return time.Duration(d)
}

// DelayFunc adapts a function to DelaySource.
type DelayFunc func(w Window) time.Duration

func (f DelayFunc) Next(w Window) time.Duration {
	return f(w)
}
