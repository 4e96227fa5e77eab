// Package hologram implements the named memory surface the rest of the
// substrate plugs into: a replicated collection of traces sharing a
// purpose, with associative recall over their encoded vectors.
//
// A Hologram owns its co-occurrence state and serializes every mutation
// through one mutex, satisfying the single-owner contract that state
// requires. Everything a hologram holds is rebuilt from plain traces, so
// persistence stays a collaborator concern (see pkg/store).
package hologram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MeshRepublic/kudzu-sub001/pkg/cooccur"
	"github.com/MeshRepublic/kudzu-sub001/pkg/encode"
	"github.com/MeshRepublic/kudzu-sub001/pkg/hrr"
	"github.com/MeshRepublic/kudzu-sub001/pkg/memerr"
	"github.com/MeshRepublic/kudzu-sub001/pkg/orset"
	"github.com/MeshRepublic/kudzu-sub001/pkg/recall"
	"github.com/MeshRepublic/kudzu-sub001/pkg/token"
	"github.com/MeshRepublic/kudzu-sub001/pkg/trace"
)

// Options tunes a hologram. The zero value selects defaults.
type Options struct {
	// Dim is the vector dimension (default hrr.DefaultDim).
	Dim int
	// Context seeds the hologram with a previously persisted co-occurrence
	// state instead of starting empty.
	Context *cooccur.State
	// Logger receives record/recall events. Nil discards them.
	Logger *slog.Logger
}

// Hologram is a single agent-side memory surface. Safe for concurrent use.
type Hologram struct {
	id      string
	name    string
	purpose string
	nodeID  string

	mu     sync.Mutex
	enc    *encode.Encoder
	ctx    *cooccur.State
	ids    orset.Set[string]
	traces map[string]trace.Trace
	index  *recall.Index
	logger *slog.Logger
}

// New creates a hologram owned by nodeID. purpose is registered in the
// encoder's codebook so encoded traces decode back to it.
func New(nodeID, name, purpose string, opts Options) (*Hologram, error) {
	dim := opts.Dim
	if dim <= 0 {
		dim = hrr.DefaultDim
	}

	ctxState := opts.Context
	if ctxState == nil {
		ctxState = cooccur.New()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := recall.NewIndex(dim)
	if err != nil {
		return nil, fmt.Errorf("create recall index: %w", err)
	}

	enc := encode.New(dim)
	if purpose != "" {
		enc.Codebook().AddPurpose(purpose)
	}

	return &Hologram{
		id:      uuid.NewString(),
		name:    name,
		purpose: purpose,
		nodeID:  nodeID,
		enc:     enc,
		ctx:     ctxState,
		ids:     orset.New[string](nodeID),
		traces:  make(map[string]trace.Trace),
		index:   index,
		logger:  logger,
	}, nil
}

// ID returns the hologram's unique identifier.
func (h *Hologram) ID() string { return h.id }

// Name returns the hologram's human-readable name.
func (h *Hologram) Name() string { return h.name }

// Purpose returns the purpose shared by this hologram's traces.
func (h *Hologram) Purpose() string { return h.purpose }

// Record learns from a trace and indexes it for recall. A trace with an
// already-known ID converges via Merge instead of being duplicated. A trace
// whose removal this replica has already observed is not re-added: a
// concurrent re-add wins only by arriving with its own tag through
// membership sync, never by minting one locally.
func (h *Hologram) Record(ctx context.Context, t trace.Trace) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := h.ids.Seen(t.ID)
	if seen && !h.ids.Contains(t.ID) {
		h.logger.Debug("trace removal already observed, not re-recording",
			"hologram", h.name, "trace", t.ID)
		return nil
	}

	if existing, ok := h.traces[t.ID]; ok {
		merged, err := trace.Merge(existing, t)
		if err != nil {
			return err
		}
		t = merged
	}

	h.ctx.Update(token.TokenizeHint(t.Hint))

	vec, err := h.enc.Encode(t, h.ctx)
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	if err := h.index.Add(ctx, t, vec); err != nil {
		return fmt.Errorf("index trace: %w", err)
	}

	h.traces[t.ID] = t
	// An ID with history keeps its existing tags; only a never-seen ID
	// mints a fresh one.
	if !seen {
		h.ids = h.ids.Add(t.ID)
	}

	h.logger.Debug("trace recorded",
		"hologram", h.name, "trace", t.ID, "origin", t.Origin, "path_len", len(t.Path))
	return nil
}

// Restore reindexes a previously learned trace with its stored vector.
// Unlike Record it does not update the co-occurrence state, so rehydrating
// from persistence never double-counts token statistics. A nil vector is
// re-encoded against the current context.
func (h *Hologram) Restore(ctx context.Context, t trace.Trace, vec hrr.Vector) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := h.ids.Seen(t.ID)
	if seen && !h.ids.Contains(t.ID) {
		return nil
	}

	if vec == nil {
		var err error
		if vec, err = h.enc.Encode(t, h.ctx); err != nil {
			return fmt.Errorf("encode trace: %w", err)
		}
	}
	if err := h.index.Add(ctx, t, vec); err != nil {
		return fmt.Errorf("index trace: %w", err)
	}
	h.traces[t.ID] = t
	if !seen {
		h.ids = h.ids.Add(t.ID)
	}
	return nil
}

// Recall runs a free-text query against the hologram's encoded traces and
// returns the top k hits, best first.
func (h *Hologram) Recall(ctx context.Context, query string, k int) ([]recall.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	qv, err := h.enc.EncodeQuery(query, h.ctx)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	results, err := h.index.Query(ctx, qv, k, nil)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("recall", "hologram", h.name, "query", query, "hits", len(results))
	return results, nil
}

// Forget removes a trace from this hologram's visible membership and from
// the recall index. The removal propagates through OR-Set sync; concurrent
// re-adds on other replicas still win.
func (h *Hologram) Forget(ctx context.Context, traceID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ids = h.ids.Remove(traceID)
	delete(h.traces, traceID)
	return h.index.Remove(ctx, traceID)
}

// Get returns a trace by ID if this replica holds it and it is visible.
func (h *Hologram) Get(traceID string) (trace.Trace, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.ids.Contains(traceID) {
		return trace.Trace{}, false
	}
	t, ok := h.traces[traceID]
	return t, ok
}

// Snapshot returns a visible trace together with its current encoding,
// for callers persisting the pair.
func (h *Hologram) Snapshot(traceID string) (trace.Trace, hrr.Vector, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.traces[traceID]
	if !ok || !h.ids.Contains(traceID) {
		return trace.Trace{}, nil, memerr.Newf(memerr.CodeNotFound, "trace %s not found", traceID)
	}
	vec, err := h.enc.Encode(t, h.ctx)
	if err != nil {
		return trace.Trace{}, nil, err
	}
	return t, vec, nil
}

// Traces returns the visible traces this replica holds.
func (h *Hologram) Traces() []trace.Trace {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]trace.Trace, 0, len(h.traces))
	for _, id := range h.ids.Elements() {
		if t, ok := h.traces[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Membership returns a copy of the trace-ID OR-Set for replication.
func (h *Hologram) Membership() orset.Set[string] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ids.Merge(orset.New[string](h.nodeID)) // merge with empty = copy
}

// ApplyMembership merges a remote replica's trace-ID set into this one.
// IDs that become visible without a local trace body stay pending until
// Record delivers the trace itself; IDs whose removal the merge surfaces
// are dropped from the trace table and the recall index.
func (h *Hologram) ApplyMembership(ctx context.Context, remote orset.Set[string]) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ids = h.ids.Merge(remote)
	for id := range h.traces {
		if h.ids.Contains(id) {
			continue
		}
		delete(h.traces, id)
		if err := h.index.Remove(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Composite consolidates every visible trace into one vector, weighted by
// clock recency so fresher traces dominate.
func (h *Hologram) Composite() (hrr.Vector, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var pairs []encode.Weighted
	for _, id := range h.ids.Elements() {
		t, ok := h.traces[id]
		if !ok {
			continue
		}
		pairs = append(pairs, encode.Weighted{Trace: t, Score: float64(t.Recency()) + 1})
	}
	return h.enc.ConsolidateWeighted(pairs, h.ctx)
}

// Maintain runs one decay-and-prune cycle on the co-occurrence state.
func (h *Hologram) Maintain() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ctx.Maintain()
}

// Context exposes the co-occurrence state for persistence. Callers must
// not mutate it while the hologram is in use.
func (h *Hologram) Context() *cooccur.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctx
}

// Len returns how many traces are currently visible.
func (h *Hologram) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ids.Len()
}
