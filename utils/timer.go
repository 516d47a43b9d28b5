package utils

import (
	"sort"
	"sync"
	"time"
)

// Timer accumulates wall time per named operation group.
type Timer struct {
	mu      sync.Mutex
	totals  map[string]time.Duration
	counts  map[string]int
}

func NewTimer() *Timer {
	return &Timer{
		totals: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

// Time runs f and charges its duration to the named group.
func (t *Timer) Time(name string, f func()) {
	start := time.Now()
	f()
	t.mu.Lock()
	t.totals[name] += time.Since(start)
	t.counts[name]++
	t.mu.Unlock()
}

// Report returns accumulated totals sorted by descending time.
func (t *Timer) Report() (names []string, totals []time.Duration, counts []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for n := range t.totals {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return t.totals[names[i]] > t.totals[names[j]]
	})
	for _, n := range names {
		totals = append(totals, t.totals[n])
		counts = append(counts, t.counts[n])
	}
	return
}
