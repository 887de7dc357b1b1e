// Package journal records the UIDs heard by the receiver and serves them
// over HTTP.
package journal

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/itohio/badgelab/pkg/link"
)

// DefaultSize is the number of entries kept when no size is given.
const DefaultSize = 100

// Entry is one received UID.
type Entry struct {
	Seq      uint64    `json:"seq"`
	UID      string    `json:"uid"`
	Level    string    `json:"level,omitempty"`
	From     string    `json:"from"`
	Received time.Time `json:"received"`
}

// Journal is a bounded ring of the most recent entries.
type Journal struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
	total   uint64
}

// New creates a journal holding up to size entries.
func New(size int) *Journal {
	if size <= 0 {
		size = DefaultSize
	}
	return &Journal{entries: make([]Entry, size)}
}

// Add records p and logs it.
func (j *Journal) Add(p link.Packet) Entry {
	e := Entry{
		UID:      p.Frame.UID,
		From:     p.From,
		Received: p.Received,
	}
	if p.Frame.HasLevel {
		e.Level = p.Frame.Level.String()
	}

	j.mu.Lock()
	j.total++
	e.Seq = j.total
	j.entries[j.next] = e
	j.next = (j.next + 1) % len(j.entries)
	if j.next == 0 {
		j.full = true
	}
	j.mu.Unlock()

	log.Println("--- MESSAGE RECEIVED ---")
	log.Printf("Tag UID: %s", e.UID)
	if e.Level != "" {
		log.Printf("Access: %s", e.Level)
	}
	log.Printf("From: %s", e.From)

	return e
}

// Entries returns up to limit of the most recent entries, oldest first. A
// non-positive limit returns all of them.
func (j *Journal) Entries(limit int) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := j.next
	start := 0
	if j.full {
		n = len(j.entries)
		start = j.next
	}
	if limit > 0 && limit < n {
		start += n - limit
		n = limit
	}

	out := make([]Entry, n)
	for i := range out {
		out[i] = j.entries[(start+i)%len(j.entries)]
	}
	return out
}

// Latest returns the most recent entry.
func (j *Journal) Latest() (Entry, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.total == 0 {
		return Entry{}, false
	}
	i := (j.next - 1 + len(j.entries)) % len(j.entries)
	return j.entries[i], true
}

// Total returns the number of entries ever added.
func (j *Journal) Total() uint64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.total
}

// Consume records packets until ctx is done or input closes.
func (j *Journal) Consume(ctx context.Context, input <-chan link.Packet) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-input:
			if !ok {
				return
			}
			j.Add(p)
		}
	}
}
