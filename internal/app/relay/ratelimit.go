package relay

import "time"

// Limit is a sliding-window budget: at most Max sends per Window.
// Max <= 0 disables the limit.
type Limit struct {
	Max    int
	Window time.Duration
}

type sendRecord struct {
	at     time.Time
	sender ConnID
}

// SlidingWindow keeps a time-ordered log of recent sends for one room and one
// message kind. It is not safe for concurrent use; the owning room's lock
// guards it.
type SlidingWindow struct {
	limit Limit
	log   []sendRecord
}

// NewSlidingWindow returns an empty window enforcing limit.
func NewSlidingWindow(limit Limit) *SlidingWindow {
	return &SlidingWindow{limit: limit}
}

// TooFast prunes entries that have aged out of the window and reports whether
// sender has already used its whole budget.
func (w *SlidingWindow) TooFast(sender ConnID, now time.Time) bool {
	w.prune(now)

	if w.limit.Max <= 0 {
		return false
	}

	count := 0
	for _, rec := range w.log {
		if rec.sender == sender {
			count++
		}
	}

	return count >= w.limit.Max
}

// Record appends a send by sender at now.
func (w *SlidingWindow) Record(sender ConnID, now time.Time) {
	w.log = append(w.log, sendRecord{at: now, sender: sender})
}

// Len is the number of entries currently held.
func (w *SlidingWindow) Len() int {
	return len(w.log)
}

func (w *SlidingWindow) prune(now time.Time) {
	kept := w.log[:0]
	for _, rec := range w.log {
		if now.Sub(rec.at) < w.limit.Window {
			kept = append(kept, rec)
		}
	}

	clear(w.log[len(kept):])
	w.log = kept
}
