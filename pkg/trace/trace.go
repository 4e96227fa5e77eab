// Package trace defines the unit of navigational memory: who created it,
// why, its causal timestamp, the path of custody through the agent network,
// and a reconstruction hint carrying enough context to rebuild meaning.
//
// Traces are value types. Follow and Merge return new traces; nothing here
// mutates in place, so traces can be handed between goroutines freely.
// Deletion is a collaborator concern; this package never removes anything.
package trace

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/MeshRepublic/kudzu-sub001/pkg/clock"
	"github.com/MeshRepublic/kudzu-sub001/pkg/memerr"
)

// Trace is an immutable-except-by-append record of navigational memory.
type Trace struct {
	// ID is unique, generated at creation, and never changes.
	ID string `json:"id"`
	// Origin identifies the creating agent.
	Origin string `json:"origin"`
	// Purpose is a symbolic tag such as "observation" or "discovery".
	Purpose string `json:"purpose"`
	// Timestamp orders mutations causally across agents.
	Timestamp clock.Clock `json:"timestamp"`
	// Path is the ordered sequence of agents the trace has visited.
	Path []string `json:"path"`
	// Hint is an open key->value map used to reconstruct meaning.
	Hint map[string]any `json:"reconstruction_hint"`
}

// New creates a trace at the given origin. The path starts at the origin
// and the origin's clock component is incremented once to record the
// creation event. A nil hint becomes an empty map.
func New(origin, purpose string, hint map[string]any) Trace {
	if hint == nil {
		hint = map[string]any{}
	}
	return Trace{
		ID:        uuid.NewString(),
		Origin:    origin,
		Purpose:   purpose,
		Timestamp: clock.New().Increment(origin),
		Path:      []string{origin},
		Hint:      cloneHint(hint),
	}
}

// Follow returns a new trace extended to the next agent: the agent is
// appended to the path and its clock component advances by one.
func Follow(t Trace, nextAgent string) Trace {
	next := t.clone()
	next.Path = append(next.Path, nextAgent)
	next.Timestamp = next.Timestamp.Increment(nextAgent)
	return next
}

// Merge combines two replicas of a trace. Both must share origin and
// purpose, otherwise the merge fails with INCOMPATIBLE_TRACES — a caller
// logic error, never silently ignored.
//
// On success the result keeps a's identity, the path becomes the membership
// union (a's entries in order, then b's unseen entries in b's order —
// path order carries no meaning after a merge), the clock becomes the
// component-wise maximum, and hints combine last-writer-wins per key with
// b, the incoming trace, winning conflicts.
func Merge(a, b Trace) (Trace, error) {
	if a.Origin != b.Origin || a.Purpose != b.Purpose {
		return Trace{}, memerr.Newf(memerr.CodeIncompatibleTraces,
			"cannot merge %s/%s with %s/%s", a.Origin, a.Purpose, b.Origin, b.Purpose)
	}

	merged := a.clone()
	merged.Timestamp = a.Timestamp.Merge(b.Timestamp)

	seen := make(map[string]bool, len(a.Path))
	for _, agent := range a.Path {
		seen[agent] = true
	}
	for _, agent := range b.Path {
		if !seen[agent] {
			seen[agent] = true
			merged.Path = append(merged.Path, agent)
		}
	}

	for key, value := range b.Hint {
		merged.Hint[key] = value
	}

	return merged, nil
}

// Visited reports whether the trace has passed through the given agent.
func (t Trace) Visited(agent string) bool {
	for _, a := range t.Path {
		if a == agent {
			return true
		}
	}
	return false
}

// Recency returns the largest clock component, a proxy for how fresh the
// trace is.
func (t Trace) Recency() uint64 {
	return t.Timestamp.Max()
}

// MarshalJSON uses the wire field names, with the clock as a plain map.
func (t Trace) MarshalJSON() ([]byte, error) {
	type wire Trace
	return json.Marshal(wire(t))
}

// UnmarshalJSON restores a trace from its wire form.
func (t *Trace) UnmarshalJSON(data []byte) error {
	type wire Trace
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Trace(w)
	if t.Hint == nil {
		t.Hint = map[string]any{}
	}
	if t.Timestamp == nil {
		t.Timestamp = clock.New()
	}
	return nil
}

func (t Trace) clone() Trace {
	next := t
	next.Timestamp = t.Timestamp.Merge(clock.New()) // cheap copy
	next.Path = append([]string(nil), t.Path...)
	next.Hint = cloneHint(t.Hint)
	return next
}

func cloneHint(hint map[string]any) map[string]any {
	out := make(map[string]any, len(hint))
	for k, v := range hint {
		out[k] = v
	}
	return out
}
