package achievements

import (
	"sort"
	"sync"
)

type userState struct {
	busy    bool
	waiting map[string]struct{}
}

// Gate admits at most one evaluation run per user and queues the triggers
// that arrive while a run is in flight. The lock only guards map
// bookkeeping; no I/O happens under it.
type Gate struct {
	mu    sync.Mutex
	users map[string]*userState
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{users: make(map[string]*userState)}
}

// TryAdmit marks the user busy and returns true if no run is in flight.
// Otherwise the trigger joins the user's waiting set, where repeated
// triggers of the same name coalesce, and false is returned.
func (g *Gate) TryAdmit(user, trigger string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.users[user]
	if !ok {
		st = &userState{waiting: make(map[string]struct{})}
		g.users[user] = st
	}
	if !st.busy {
		st.busy = true
		return true
	}
	st.waiting[trigger] = struct{}{}
	return false
}

// Release ends the user's current run. If triggers are waiting, one is
// removed and returned and the user stays busy: the caller owns the next
// run. Otherwise the user becomes idle and false is returned.
func (g *Gate) Release(user string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.users[user]
	if !ok {
		return "", false
	}
	if len(st.waiting) == 0 {
		delete(g.users, user)
		return "", false
	}

	// Any waiting trigger may go next; the smallest name keeps runs
	// reproducible.
	next := ""
	for t := range st.waiting {
		if next == "" || t < next {
			next = t
		}
	}
	delete(st.waiting, next)
	st.busy = true
	return next, true
}

// Drop marks the user idle and discards the waiting triggers, returning
// them. It is used when a run could not be scheduled at all.
func (g *Gate) Drop(user string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.users[user]
	if !ok {
		return nil
	}
	delete(g.users, user)
	return sortedKeys(st.waiting)
}

// Busy reports whether a run is in flight for the user.
func (g *Gate) Busy(user string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.users[user]
	return ok && st.busy
}

// Pending returns the user's waiting triggers, sorted.
func (g *Gate) Pending(user string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.users[user]
	if !ok {
		return nil
	}
	return sortedKeys(st.waiting)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
