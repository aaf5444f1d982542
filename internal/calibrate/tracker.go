// Package calibrate estimates a player's systematic input latency so that
// judgement reflects perceived rhythm rather than raw reaction lag.
package calibrate

import "math"

const historySize = 10

// Tracker keeps a ring buffer of recent hit errors and derives a smoothed
// offset from them. All values are milliseconds.
type Tracker struct {
	samples [historySize]float64
	head    int
	count   int
	offset  float64
}

// NewTracker starts from a previously persisted offset, or 0.
func NewTracker(offset float64) *Tracker {
	return &Tracker{offset: offset}
}

func (t *Tracker) Offset() float64 {
	return t.offset
}

// Corrected converts a raw media time into sync time.
func (t *Tracker) Corrected(raw float64) float64 {
	return raw - t.offset
}

// Record pushes a signed hit error (raw event time minus scheduled time) and
// recomputes the offset. While the offset is more than 1ms from the history
// mean it converges exponentially, which keeps a single outlier sample from
// swinging the estimate; once close it snaps to the mean.
func (t *Tracker) Record(diff float64) {
	t.samples[t.head] = diff
	t.head = (t.head + 1) % historySize
	if t.count < historySize {
		t.count++
	}

	sum := 0.0
	for i := 0; i < t.count; i++ {
		sum += t.samples[i]
	}
	avg := sum / float64(t.count)

	if math.Abs(t.offset-avg) > 1 {
		t.offset = t.offset*0.9 + avg*0.1
	} else {
		t.offset = avg
	}
}
