package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Process-wide timing totals for pipeline phases and hot calls.

// Sample is the accumulated time of one tracked name.
type Sample struct {
	Name  string
	Total time.Duration
	Calls int
}

// Mean returns the average duration per call.
func (s Sample) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

var (
	mu      sync.Mutex
	samples = make(map[string]*Sample)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("world.GenerateAll")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		s, ok := samples[name]
		if !ok {
			s = &Sample{Name: name}
			samples[name] = s
		}
		s.Total += d
		s.Calls++
		mu.Unlock()
	}
}

// Reset drops every recorded sample.
func Reset() {
	mu.Lock()
	clear(samples)
	mu.Unlock()
}

// Snapshot returns a copy of the samples, longest total first.
func Snapshot() []Sample {
	mu.Lock()
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		out = append(out, *s)
	}
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats the n longest totals.
// Example: "world.GenerateAll:41.2ms(1), meshing.Extract:9.8ms(96)"
func TopN(n int) string {
	ss := Snapshot()
	n = min(n, len(ss))
	parts := make([]string, 0, n)
	for _, s := range ss[:n] {
		parts = append(parts, fmt.Sprintf("%s:%.1fms(%d)", s.Name, float64(s.Total.Microseconds())/1000, s.Calls))
	}
	return strings.Join(parts, ", ")
}
