package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prepdeck/prepdeck/internal/answers"
)

// Patch is the partial session update the persistence boundary accepts.
type Patch struct {
	Responses   answers.ResponseMap `json:"responses,omitempty"`
	Flags       map[string]bool     `json:"flags,omitempty"`
	TimeLeftSec *int                `json:"time_left_sec,omitempty"`
}

// Patcher is the boundary operation the syncer calls.
type Patcher interface {
	PatchSession(ctx context.Context, sessionID string, p Patch) error
}

// Syncer is the client half of background autosave: an exam player embeds
// one and Offers it every state change, and it periodically pushes
// the latest snapshot to a Patcher (the HTTP client wrapping PATCH
// /sessions/{id}, or a Store directly when embedded in-process). The
// gateway itself never runs one; its half is the PATCH endpoint. Pushes
// are fire-and-forget: a failure is logged and dropped, never surfaced,
// and never blocks further student interaction. The final submit is the
// authoritative write.
type Syncer struct {
	store    Patcher
	interval time.Duration

	mu      sync.Mutex
	pending *State
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewSyncer(store Patcher, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Syncer{store: store, interval: interval}
}

// Offer hands the syncer the latest state. Cheap; call on every mutation.
func (y *Syncer) Offer(s State) {
	y.mu.Lock()
	y.pending = &s
	y.mu.Unlock()
}

// Start launches the background loop. Stop with Stop.
func (y *Syncer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	y.cancel = cancel
	y.done = make(chan struct{})
	go y.loop(ctx)
}

func (y *Syncer) Stop() {
	if y.cancel != nil {
		y.cancel()
		<-y.done
	}
}

func (y *Syncer) loop(ctx context.Context) {
	defer close(y.done)
	tick := time.NewTicker(y.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			y.flush(ctx)
		}
	}
}

func (y *Syncer) flush(ctx context.Context) {
	y.mu.Lock()
	s := y.pending
	y.pending = nil
	y.mu.Unlock()
	if s == nil || s.Status != StatusInProgress {
		return
	}
	tl := s.TimeLeftSec
	err := y.store.PatchSession(ctx, s.ID, Patch{
		Responses:   s.Responses,
		Flags:       s.Flags,
		TimeLeftSec: &tl,
	})
	if err != nil {
		log.Printf("session sync failed (will retry next tick): %v", err)
	}
}
