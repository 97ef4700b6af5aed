package netsim

//
// Monotonic ID generation
//

import "sync/atomic"

// idGenerator hands out unique, positive, monotonically increasing
// IDs. The zero value is ready to use. Backs timer IDs, which §3
// invariant 3 requires to be unique and positive for the lifetime of
// the [Simulator].
type idGenerator struct {
	next atomic.Int64
}

// nextID returns the next unique ID, starting from 1.
func (g *idGenerator) nextID() int {
	return int(g.next.Add(1))
}
