package cli

import (
	"context"
	"fmt"

	"github.com/MeshRepublic/kudzu-sub001/internal/config"
	"github.com/MeshRepublic/kudzu-sub001/internal/telemetry"
	"github.com/MeshRepublic/kudzu-sub001/pkg/hologram"
	"github.com/MeshRepublic/kudzu-sub001/pkg/store"
)

// workspace bundles the pieces every command needs: loaded config, a
// logger, and the trace store.
type workspace struct {
	cfg    *config.Config
	logger *telemetry.Logger
	store  *store.SQLiteStore
}

func openWorkspace() (*workspace, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger := telemetry.NewLogger(level, cfg.Logging.Format)

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &workspace{cfg: cfg, logger: logger, store: st}, nil
}

func (w *workspace) close() {
	w.store.Close()
	w.logger.Close()
}

// loadHologram rehydrates a named hologram from the store: its persisted
// co-occurrence state plus every stored trace with its vector. Restore is
// used rather than Record so token statistics are not counted twice.
func (w *workspace) loadHologram(ctx context.Context, name, purpose string) (*hologram.Hologram, error) {
	ctxState, err := w.store.LoadContext(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load context state: %w", err)
	}
	ctxState.BlendStrength = w.cfg.Memory.BlendStrength

	h, err := hologram.New(w.cfg.Node.ID, name, purpose, hologram.Options{
		Dim:     w.cfg.Memory.Dimension,
		Context: ctxState,
		Logger:  w.logger.Slog(),
	})
	if err != nil {
		return nil, err
	}

	traces, vectors, err := w.store.ListTraces(name, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	for i, t := range traces {
		if err := h.Restore(ctx, t, vectors[i]); err != nil {
			return nil, fmt.Errorf("failed to restore trace %s: %w", t.ID, err)
		}
	}
	return h, nil
}
