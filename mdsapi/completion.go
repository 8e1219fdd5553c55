package mdsapi

// Completion is a one-shot callback. Every waiter list in this system
// stores Completions and fires them exactly once, from the single MDS
// event goroutine (spec.md §5: no locking, no cancellation, no
// timeout).
type Completion func()

// Gather is a counting latch: it collects k sub-completions and fires
// its parent exactly once, when the last of them has fired. A Gather
// constructed with k == 0 fires its parent immediately.
//
// Sub-completions may only be added before any of them has fired;
// this mirrors spec.md §5's "Sub-completions may be added only before
// any has fired."
type Gather struct {
	remaining int
	parent    Completion
	fired     bool
}

// NewGather creates a gather for k sub-completions that will invoke
// parent once all of them have fired. If k is 0, parent fires before
// NewGather returns.
func NewGather(k int, parent Completion) *Gather {
	g := &Gather{remaining: k, parent: parent}
	if k <= 0 {
		g.fire()
	}
	return g
}

// Sub returns a new sub-completion. The gather's parent fires once
// every sub-completion returned by Sub has been called.
func (g *Gather) Sub() Completion {
	if g.fired {
		panic("mdsapi: Gather.Sub called after the gather already fired")
	}
	return func() {
		g.remaining--
		if g.remaining <= 0 {
			g.fire()
		}
	}
}

func (g *Gather) fire() {
	if g.fired {
		return
	}
	g.fired = true
	if g.parent != nil {
		g.parent()
	}
}

// Pending reports how many sub-completions are still outstanding.
func (g *Gather) Pending() int { return g.remaining }
