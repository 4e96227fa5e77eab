//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeshRepublic/kudzu-sub001/pkg/kudzu"
)

func writeConfig(t *testing.T, dir string) {
	t.Helper()
	cfg := `name: integration-swarm
node:
  id: n1
memory:
  dimension: 256
store:
  path: ` + filepath.Join(dir, "memory.db") + `
`
	if err := os.WriteFile(filepath.Join(dir, "kudzu.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryPersistenceAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	ctx := context.Background()

	// --- Run 1: record traces, close ---
	mem1, err := kudzu.Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	deploy, err := mem1.Record(ctx, "incidents", "agent-1", "observation",
		map[string]any{"content": "deploy failed on api gateway"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mem1.Record(ctx, "incidents", "agent-2", "decision",
		map[string]any{"summary": "roll back to previous release"}); err != nil {
		t.Fatal(err)
	}
	if err := mem1.Close(); err != nil {
		t.Fatal(err)
	}

	// --- Run 2: a fresh process sees everything ---
	mem2, err := kudzu.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer mem2.Close()

	hits, err := mem2.Recall(ctx, "incidents", "api deploy failure")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 persisted traces, got %d", len(hits))
	}
	if hits[0].TraceID != deploy.ID {
		t.Errorf("best hit = %s, want the deploy trace", hits[0].TraceID)
	}

	// learned context survives too: rehydration must not re-count
	h, err := mem2.Hologram(ctx, "incidents")
	if err != nil {
		t.Fatal(err)
	}
	if got := h.Context().TracesProcessed; got != 2 {
		t.Errorf("TracesProcessed = %d, want 2 (no double counting)", got)
	}

	// follow extends the path and persists the merged trace
	followed, err := mem2.Follow(ctx, "incidents", deploy.ID, "agent-3")
	if err != nil {
		t.Fatal(err)
	}
	if !followed.Visited("agent-3") {
		t.Errorf("Path = %v, want agent-3 appended", followed.Path)
	}

	// --- Run 3: the follow is durable ---
	if err := mem2.Close(); err != nil {
		t.Fatal(err)
	}
	mem3, err := kudzu.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer mem3.Close()

	h3, err := mem3.Hologram(ctx, "incidents")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := h3.Get(deploy.ID)
	if !ok {
		t.Fatal("followed trace lost across restart")
	}
	if !got.Visited("agent-3") {
		t.Errorf("persisted Path = %v, want agent-3", got.Path)
	}
}

func TestForgetIsDurable(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	ctx := context.Background()

	mem1, err := kudzu.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := mem1.Record(ctx, "scratch", "agent-1", "thought",
		map[string]any{"content": "temporary working note"})
	if err != nil {
		t.Fatal(err)
	}
	if err := mem1.Forget(ctx, "scratch", tr.ID); err != nil {
		t.Fatal(err)
	}
	if err := mem1.Close(); err != nil {
		t.Fatal(err)
	}

	mem2, err := kudzu.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer mem2.Close()

	hits, err := mem2.Recall(ctx, "scratch", "temporary note")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("forgotten trace resurrected after restart: %v", hits)
	}
}
