// Package clock implements the causal clock used to order trace mutations
// across agents that never share a wall clock.
//
// A Clock maps agent identifiers to event counters. Missing agents read as
// zero, so no operation can fail on an unknown agent. All operations return
// a new Clock; values are never mutated in place, which makes them safe to
// share across goroutines without locking.
package clock

// Ordering is the result of comparing two clocks.
type Ordering int

const (
	// Equal means every component matches.
	Equal Ordering = iota
	// Before means the first clock causally precedes the second.
	Before
	// After means the second clock causally precedes the first.
	After
	// Concurrent means neither clock precedes the other.
	Concurrent
)

// String returns the ordering name for logs and errors.
func (o Ordering) String() string {
	switch o {
	case Equal:
		return "equal"
	case Before:
		return "before"
	case After:
		return "after"
	case Concurrent:
		return "concurrent"
	default:
		return "unknown"
	}
}

// Clock is a per-agent logical time vector. The zero value is not usable;
// construct with New or Seeded.
type Clock map[string]uint64

// New returns an empty clock.
func New() Clock {
	return Clock{}
}

// Seeded returns a clock with one agent registered at zero.
func Seeded(agent string) Clock {
	return Clock{agent: 0}
}

// Get returns the counter for an agent. Unknown agents read as zero.
func (c Clock) Get(agent string) uint64 {
	return c[agent]
}

// Increment returns a copy of the clock with the agent's counter advanced
// by one. Use the local agent for local events, or an observed agent when
// acknowledging its activity.
func (c Clock) Increment(agent string) Clock {
	next := c.clone()
	next[agent]++
	return next
}

// Merge returns the component-wise maximum over the union of both clocks.
// Merge is commutative, associative, and idempotent; a clock never shrinks.
func (c Clock) Merge(other Clock) Clock {
	merged := c.clone()
	for agent, count := range other {
		if count > merged[agent] {
			merged[agent] = count
		}
	}
	return merged
}

// Compare determines the causal relationship between two clocks.
//
// Before means every component of c is <= the matching component of other
// and at least one is strictly less; After is the symmetric case; Equal
// means all components match; anything else is Concurrent.
func (c Clock) Compare(other Clock) Ordering {
	cLess, oLess := false, false

	for agent, count := range c {
		if oc := other[agent]; count < oc {
			cLess = true
		} else if count > oc {
			oLess = true
		}
	}
	for agent, count := range other {
		if cc := c[agent]; cc < count {
			cLess = true
		} else if cc > count {
			oLess = true
		}
	}

	switch {
	case cLess && oLess:
		return Concurrent
	case cLess:
		return Before
	case oLess:
		return After
	default:
		return Equal
	}
}

// HappenedBefore reports whether c causally precedes other.
func (c Clock) HappenedBefore(other Clock) bool {
	return c.Compare(other) == Before
}

// Max returns the largest counter in the clock, used as a recency proxy
// when ranking traces.
func (c Clock) Max() uint64 {
	var max uint64
	for _, count := range c {
		if count > max {
			max = count
		}
	}
	return max
}

// ToMap returns a plain map copy for wire transport.
func (c Clock) ToMap() map[string]uint64 {
	return c.clone()
}

// FromMap builds a clock from a plain map, copying it.
func FromMap(m map[string]uint64) Clock {
	return Clock(m).clone()
}

func (c Clock) clone() Clock {
	next := make(Clock, len(c)+1)
	for agent, count := range c {
		next[agent] = count
	}
	return next
}
