package services

import (
	"context"
	"sync"
	"time"
)

// TimelineEntry is one HTTP call made to Contentful while serving a request.
// Start and Duration are in milliseconds; Start is relative to the timeline origin.
type TimelineEntry struct {
	URL      string `json:"url"`
	Start    int64  `json:"start"`
	Duration int64  `json:"duration"`
}

// Timeline collects the Contentful calls of a single GraphQL request.
type Timeline struct {
	mu      sync.Mutex
	origin  time.Time
	entries []TimelineEntry
}

func NewTimeline() *Timeline {
	return &Timeline{origin: time.Now()}
}

type timelineKey struct{}

func WithTimeline(ctx context.Context, tl *Timeline) context.Context {
	return context.WithValue(ctx, timelineKey{}, tl)
}

func TimelineFromContext(ctx context.Context) *Timeline {
	tl, _ := ctx.Value(timelineKey{}).(*Timeline)
	return tl
}

func (t *Timeline) record(url string, start time.Time, took time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TimelineEntry{
		URL:      url,
		Start:    start.Sub(t.origin).Milliseconds(),
		Duration: took.Milliseconds(),
	})
}

// Entries returns a copy of the recorded calls.
func (t *Timeline) Entries() []TimelineEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TimelineEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
