package jsv

import (
	"reflect"

	"go.uber.org/atomic"
)

// planCache maps runtime types to compiled plans.
//
// Readers load an immutable snapshot and never block. Writers copy the
// snapshot, add their entries and compare-and-swap it in; when another
// goroutine published first they retry against the new snapshot. A key, once
// present, keeps its value: a losing writer adopts the winner's plan and its
// own computation is discarded.
type planCache[P any] struct {
	snapshot atomic.Pointer[map[reflect.Type]P]
}

// load returns the plan for t if one has been published.
func (c *planCache[P]) load(t reflect.Type) (P, bool) {
	m := c.snapshot.Load()
	if m == nil {
		var zero P
		return zero, false
	}
	p, ok := (*m)[t]
	return p, ok
}

// publish inserts every entry of batch that is not already present and
// returns the plans now in the cache for those keys.
func (c *planCache[P]) publish(batch map[reflect.Type]P) map[reflect.Type]P {
	for {
		old := c.snapshot.Load()
		size := len(batch)
		if old != nil {
			size += len(*old)
		}
		next := make(map[reflect.Type]P, size)
		if old != nil {
			for k, v := range *old {
				next[k] = v
			}
		}

		won := make(map[reflect.Type]P, len(batch))
		for k, v := range batch {
			if existing, ok := next[k]; ok {
				won[k] = existing
				continue
			}
			next[k] = v
			won[k] = v
		}

		if c.snapshot.CompareAndSwap(old, &next) {
			return won
		}
	}
}

// len returns the number of published plans.
func (c *planCache[P]) len() int {
	m := c.snapshot.Load()
	if m == nil {
		return 0
	}
	return len(*m)
}

// reset drops every published plan.
func (c *planCache[P]) reset() {
	c.snapshot.Store(nil)
}

// resetPlanCaches drops the compiled plans of every format. Registrations
// call it so that plans compiled before the registration are rebuilt.
func resetPlanCaches() {
	for _, f := range []Format{JSON, JSV} {
		tf := f.base()
		tf.writers.reset()
		tf.readers.reset()
	}
}
