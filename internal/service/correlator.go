package service

import (
	"context"
	"sync"
	"time"

	"bricklabels.dev/internal/protocol"
)

// Correlator matches a suspended command workflow to the issuing
// player's next interaction event. At most one wait slot exists per
// player; a newer registration cancels the older one (latest wait
// wins).
type Correlator struct {
	mu    sync.Mutex
	slots map[string]*waitSlot
}

type waitSlot struct {
	ch     chan protocol.Interaction
	cancel chan struct{}
}

func NewCorrelator() *Correlator {
	return &Correlator{slots: make(map[string]*waitSlot)}
}

// Register installs a fresh wait slot for playerID. Any prior slot is
// cancelled so its workflow aborts immediately instead of racing its
// own timer.
func (c *Correlator) Register(playerID string) *waitSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old := c.slots[playerID]; old != nil {
		close(old.cancel)
	}
	w := &waitSlot{
		ch:     make(chan protocol.Interaction, 1),
		cancel: make(chan struct{}),
	}
	c.slots[playerID] = w
	return w
}

// Await suspends until the slot resolves, the timeout elapses, the
// slot is superseded, or ctx is done. The slot is always cleared by
// the time Await returns.
func (c *Correlator) Await(ctx context.Context, playerID string, w *waitSlot, timeout time.Duration) (protocol.Interaction, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case it := <-w.ch:
		return it, nil
	case <-w.cancel:
		return protocol.Interaction{}, errSuperseded
	case <-timer.C:
		c.clear(playerID, w)
		return protocol.Interaction{}, errTimedOut
	case <-ctx.Done():
		c.clear(playerID, w)
		return protocol.Interaction{}, ctx.Err()
	}
}

// clear removes the slot only if it is still w; Deliver or a newer
// Register may already have replaced it.
func (c *Correlator) clear(playerID string, w *waitSlot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slots[playerID] == w {
		delete(c.slots, playerID)
	}
}

// Deliver resolves the pending slot for the interacting player and
// reports whether the event was consumed. An unconsumed event belongs
// to the label display path.
func (c *Correlator) Deliver(it protocol.Interaction) bool {
	c.mu.Lock()
	w := c.slots[it.Player.ID]
	if w != nil {
		delete(c.slots, it.Player.ID)
	}
	c.mu.Unlock()
	if w == nil {
		return false
	}
	w.ch <- it
	return true
}

// Pending reports whether playerID has an outstanding wait.
func (c *Correlator) Pending(playerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.slots[playerID]
	return ok
}
