// Package reader runs the badge reader: it polls for tags, decides access,
// broadcasts the UID and signals the result on the reader's LED.
package reader

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/itohio/badgelab/pkg/access"
	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/message"
)

// Sender transmits frames to the status units.
type Sender interface {
	Send(ctx context.Context, f message.Frame) error
}

// Scan is one accepted tag read.
type Scan struct {
	UID   string
	Level access.Level
	At    time.Time
}

// Reader is the badge reader loop.
type Reader struct {
	src      TagSource
	list     *access.List
	out      Sender
	feedback Feedback
	poll     time.Duration
	debounce time.Duration
	now      func() time.Time

	mu       sync.Mutex
	limiters map[string]*debounceEntry
	onScan   func(Scan)
}

// New creates a reader. A nil feedback is allowed.
func New(src TagSource, list *access.List, out Sender, feedback Feedback, cfg config.ReaderConfig) *Reader {
	return &Reader{
		src:      src,
		list:     list,
		out:      out,
		feedback: feedback,
		poll:     cfg.PollInterval,
		debounce: cfg.Debounce,
		now:      time.Now,
		limiters: make(map[string]*debounceEntry),
	}
}

// OnScan registers a callback for accepted scans.
func (r *Reader) OnScan(fn func(Scan)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onScan = fn
}

// Run polls for tags until ctx is done and returns ctx.Err(). Detection and
// send errors are logged and polling continues.
func (r *Reader) Run(ctx context.Context) error {
	if r.feedback != nil {
		if err := r.feedback.Idle(); err != nil {
			log.Printf("Failed to set idle feedback: %v", err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		uid, err := r.src.DetectUID(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			log.Printf("Error detecting tag: %v", err)
		case len(uid) > 0:
			r.handle(ctx, access.FormatUID(uid))
		}

		if err := sleep(ctx, r.poll); err != nil {
			return err
		}
	}
}

// handle processes a detected UID unless it was seen within the debounce
// interval.
func (r *Reader) handle(ctx context.Context, uid string) {
	now := r.now()
	if !r.allow(uid, now) {
		return
	}

	level := r.list.Lookup(uid)
	log.Printf("Card UID: %s (%s)", uid, level)

	f := message.Frame{UID: uid, Level: level, HasLevel: true}
	if err := r.out.Send(ctx, f); err != nil {
		log.Printf("Error sending UID %s: %v", uid, err)
	}

	r.mu.Lock()
	onScan := r.onScan
	r.mu.Unlock()
	if onScan != nil {
		onScan(Scan{UID: uid, Level: level, At: now})
	}

	if r.feedback != nil {
		if err := r.feedback.Show(ctx, level); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Feedback failed: %v", err)
		}
	}
}

func (r *Reader) allow(uid string, now time.Time) bool {
	if r.debounce <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A UID last accepted a full debounce interval ago has a full limiter,
	// so forgetting it changes nothing.
	for id, e := range r.limiters {
		if now.Sub(e.accepted) >= r.debounce {
			delete(r.limiters, id)
		}
	}

	e, ok := r.limiters[uid]
	if !ok {
		e = &debounceEntry{limiter: rate.NewLimiter(rate.Every(r.debounce), 1)}
		r.limiters[uid] = e
	}
	if !e.limiter.AllowN(now, 1) {
		return false
	}
	e.accepted = now
	return true
}

type debounceEntry struct {
	limiter  *rate.Limiter
	accepted time.Time
}
