package auth

import "sync/atomic"

// Gate is the pending flag owned by one form instance. A submit must win
// TryAcquire before dispatching and call Release on every exit path.
type Gate struct {
	pending atomic.Bool
}

func (g *Gate) TryAcquire() bool { return g.pending.CompareAndSwap(false, true) }

func (g *Gate) Release() { g.pending.Store(false) }

func (g *Gate) Pending() bool { return g.pending.Load() }

// Do runs one login guarded by the gate. ok is false when another login on
// the same gate is still in flight; nothing is sent in that case.
func (g *Gate) Do(fn func() Outcome) (out Outcome, ok bool) {
	if !g.TryAcquire() {
		return Outcome{}, false
	}
	defer g.Release()
	return fn(), true
}
