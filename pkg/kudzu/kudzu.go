// Package kudzu provides a batteries-included entry point to the memory
// substrate: configuration, persistence, and holograms wired together.
//
// Example usage:
//
//	import "github.com/MeshRepublic/kudzu-sub001/pkg/kudzu"
//
//	mem, err := kudzu.Open(".")
//	defer mem.Close()
//
//	// Record what an agent just learned
//	tr, err := mem.Record(ctx, "incidents", "agent-1", "observation",
//		map[string]any{"content": "deploy failed on api gateway"})
//
//	// Recall it later, from any agent
//	hits, err := mem.Recall(ctx, "incidents", "deploy failure")
//
// For finer control (membership sync, composites, custom encoders) use the
// pkg/hologram, pkg/trace, and pkg/encode packages directly.
package kudzu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MeshRepublic/kudzu-sub001/internal/config"
	"github.com/MeshRepublic/kudzu-sub001/internal/telemetry"
	"github.com/MeshRepublic/kudzu-sub001/pkg/hologram"
	"github.com/MeshRepublic/kudzu-sub001/pkg/recall"
	"github.com/MeshRepublic/kudzu-sub001/pkg/store"
	"github.com/MeshRepublic/kudzu-sub001/pkg/trace"
)

// Memory is a handle on the configured memory substrate. Safe for
// concurrent use.
type Memory struct {
	cfg      *config.Config
	logger   *telemetry.Logger
	store    *store.SQLiteStore
	metrics  *telemetry.Metrics
	exporter telemetry.MetricsExporter

	mu        sync.Mutex
	holograms map[string]*hologram.Hologram
}

// Open loads kudzu.yaml from dir (defaults apply when missing) and opens
// the trace store it points at.
func Open(dir string) (*Memory, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	metrics := telemetry.NewMetrics()
	var exporter telemetry.MetricsExporter
	if cfg.Logging.Metrics != "" {
		exporter, err = telemetry.NewJSONFileExporter(cfg.Logging.Metrics)
		if err != nil {
			st.Close()
			return nil, err
		}
		metrics.SetExporter(exporter)
	}

	return &Memory{
		cfg:       cfg,
		logger:    telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format),
		store:     st,
		metrics:   metrics,
		exporter:  exporter,
		holograms: make(map[string]*hologram.Hologram),
	}, nil
}

// Metrics exposes the substrate's runtime counters.
func (m *Memory) Metrics() *telemetry.Metrics { return m.metrics }

// Record creates a trace at origin and records it in the named hologram,
// persisting the trace, its encoding, and the learned context.
func (m *Memory) Record(ctx context.Context, hologramName, origin, purpose string, hint map[string]any) (trace.Trace, error) {
	h, err := m.hologram(ctx, hologramName, purpose)
	if err != nil {
		return trace.Trace{}, err
	}

	t := trace.New(origin, purpose, hint)
	start := time.Now()
	if err := h.Record(ctx, t); err != nil {
		return trace.Trace{}, err
	}
	m.metrics.RecordEncodeDuration(time.Since(start))
	m.metrics.IncTracesRecorded()

	if err := m.persist(hologramName, h, t.ID); err != nil {
		return trace.Trace{}, err
	}
	return t, nil
}

// Follow extends a stored trace's path through the next agent and persists
// the result in the named hologram.
func (m *Memory) Follow(ctx context.Context, hologramName, traceID, nextAgent string) (trace.Trace, error) {
	stored, _, err := m.store.LoadTrace(traceID)
	if err != nil {
		return trace.Trace{}, fmt.Errorf("failed to load trace %s: %w", traceID, err)
	}

	h, err := m.hologram(ctx, hologramName, stored.Purpose)
	if err != nil {
		return trace.Trace{}, err
	}

	followed := trace.Follow(stored, nextAgent)
	if err := h.Record(ctx, followed); err != nil {
		return trace.Trace{}, err
	}
	m.metrics.IncTracesMerged()
	if err := m.persist(hologramName, h, followed.ID); err != nil {
		return trace.Trace{}, err
	}

	merged, _ := h.Get(followed.ID)
	return merged, nil
}

// Recall runs a free-text query against the named hologram and returns the
// best matches, up to the configured recall limit.
func (m *Memory) Recall(ctx context.Context, hologramName, query string) ([]recall.Result, error) {
	return m.RecallN(ctx, hologramName, query, m.cfg.Memory.RecallLimit)
}

// RecallN is Recall with an explicit result limit.
func (m *Memory) RecallN(ctx context.Context, hologramName, query string, k int) ([]recall.Result, error) {
	h, err := m.hologram(ctx, hologramName, "")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := h.Recall(ctx, query, k)
	if err != nil {
		return nil, err
	}
	m.metrics.RecordRecallDuration(time.Since(start))
	m.metrics.IncRecalls()
	return results, nil
}

// Forget removes a trace from the named hologram and from the store.
func (m *Memory) Forget(ctx context.Context, hologramName, traceID string) error {
	h, err := m.hologram(ctx, hologramName, "")
	if err != nil {
		return err
	}
	if err := h.Forget(ctx, traceID); err != nil {
		return err
	}
	m.metrics.DecLiveTraces()
	return m.store.DeleteTrace(traceID)
}

// Hologram returns the live hologram for a name, rehydrating it from the
// store on first use.
func (m *Memory) Hologram(ctx context.Context, name string) (*hologram.Hologram, error) {
	return m.hologram(ctx, name, "")
}

// Maintain runs one decay-and-prune cycle on the named hologram's context
// and persists the result.
func (m *Memory) Maintain(ctx context.Context, hologramName string) error {
	h, err := m.hologram(ctx, hologramName, "")
	if err != nil {
		return err
	}
	h.Maintain()
	return m.store.SaveContext(hologramName, h.Context())
}

// Close flushes metrics and releases the store and any log files.
func (m *Memory) Close() error {
	m.metrics.Flush("session.closed", map[string]string{"node": m.cfg.Node.ID})
	if m.exporter != nil {
		m.exporter.Close()
	}
	err := m.store.Close()
	m.logger.Close()
	return err
}

// hologram returns the cached live hologram, loading context and stored
// traces on first access.
func (m *Memory) hologram(ctx context.Context, name, purpose string) (*hologram.Hologram, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.holograms[name]; ok {
		return h, nil
	}

	ctxState, err := m.store.LoadContext(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load context state: %w", err)
	}
	ctxState.BlendStrength = m.cfg.Memory.BlendStrength

	h, err := hologram.New(m.cfg.Node.ID, name, purpose, hologram.Options{
		Dim:     m.cfg.Memory.Dimension,
		Context: ctxState,
		Logger:  m.logger.Slog(),
	})
	if err != nil {
		return nil, err
	}

	traces, vectors, err := m.store.ListTraces(name, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	for i, t := range traces {
		if err := h.Restore(ctx, t, vectors[i]); err != nil {
			return nil, fmt.Errorf("failed to restore trace %s: %w", t.ID, err)
		}
	}

	m.holograms[name] = h
	return h, nil
}

func (m *Memory) persist(hologramName string, h *hologram.Hologram, traceID string) error {
	t, vec, err := h.Snapshot(traceID)
	if err != nil {
		return err
	}
	if err := m.store.SaveTrace(hologramName, t, vec); err != nil {
		return fmt.Errorf("failed to save trace: %w", err)
	}
	if err := m.store.SaveContext(hologramName, h.Context()); err != nil {
		return fmt.Errorf("failed to save context state: %w", err)
	}
	return nil
}
