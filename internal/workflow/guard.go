package workflow

import (
	"cookbook/internal/models"

	"golang.org/x/sync/semaphore"
)

// Guard admits one action at a time. A second action started while the
// first is pending fails immediately with models.ErrInFlight instead of
// queueing, so a repeated submit never reaches the API twice.
type Guard struct {
	sem *semaphore.Weighted
}

// NewGuard returns an idle guard.
func NewGuard() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// Do runs fn unless another call is still running.
func (g *Guard) Do(fn func() error) error {
	if !g.sem.TryAcquire(1) {
		return models.ErrInFlight
	}
	defer g.sem.Release(1)
	return fn()
}

// Busy reports whether an action is pending.
func (g *Guard) Busy() bool {
	if !g.sem.TryAcquire(1) {
		return true
	}
	g.sem.Release(1)
	return false
}
