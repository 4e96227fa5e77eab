package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MeshRepublic/kudzu-sub001/pkg/cooccur"
	"github.com/MeshRepublic/kudzu-sub001/pkg/encode"
	"github.com/MeshRepublic/kudzu-sub001/pkg/trace"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), ".kudzu", "memory.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadTrace(t *testing.T) {
	s := openTestStore(t)
	e := encode.New(128)

	tr := trace.New("a1", "observation", map[string]any{"content": "deploy failed"})
	tr = trace.Follow(tr, "a2")
	vec, err := e.Encode(tr, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SaveTrace("default", tr, vec); err != nil {
		t.Fatalf("SaveTrace() error = %v", err)
	}

	got, gotVec, err := s.LoadTrace(tr.ID)
	if err != nil {
		t.Fatalf("LoadTrace() error = %v", err)
	}
	if got.ID != tr.ID || got.Origin != "a1" || len(got.Path) != 2 {
		t.Errorf("loaded trace = %+v", got)
	}
	if got.Hint["content"] != "deploy failed" {
		t.Errorf("Hint = %v", got.Hint)
	}
	if len(gotVec) != 128 {
		t.Fatalf("vector dim = %d, want 128", len(gotVec))
	}
	for i := range vec {
		if gotVec[i] != vec[i] {
			t.Fatalf("vector element %d changed: %v != %v", i, gotVec[i], vec[i])
		}
	}
}

func TestSaveTraceUpsert(t *testing.T) {
	s := openTestStore(t)

	tr := trace.New("a1", "observation", map[string]any{"content": "v1"})
	if err := s.SaveTrace("default", tr, nil); err != nil {
		t.Fatal(err)
	}

	tr.Hint["content"] = "v2"
	if err := s.SaveTrace("default", tr, nil); err != nil {
		t.Fatal(err)
	}

	got, _, err := s.LoadTrace(tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hint["content"] != "v2" {
		t.Errorf("Hint[content] = %v, want v2", got.Hint["content"])
	}

	traces, _, err := s.ListTraces("default", -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(traces) != 1 {
		t.Errorf("got %d traces, upsert should not duplicate", len(traces))
	}
}

func TestLoadTraceMissing(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.LoadTrace("ghost"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("error = %v, want sql.ErrNoRows", err)
	}
}

func TestListTracesByHologramAndRecency(t *testing.T) {
	s := openTestStore(t)

	stale := trace.New("a1", "observation", map[string]any{"content": "old"})
	fresh := trace.New("a1", "observation", map[string]any{"content": "new"})
	fresh = trace.Follow(trace.Follow(fresh, "a2"), "a2")
	other := trace.New("a9", "observation", map[string]any{"content": "elsewhere"})

	if err := s.SaveTrace("default", stale, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTrace("default", fresh, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTrace("incidents", other, nil); err != nil {
		t.Fatal(err)
	}

	traces, vectors, err := s.ListTraces("default", -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(traces) != 2 || len(vectors) != 2 {
		t.Fatalf("got %d traces, want 2", len(traces))
	}
	if traces[0].ID != fresh.ID {
		t.Error("traces should come back most recent first")
	}

	limited, _, err := s.ListTraces("default", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d traces", len(limited))
	}
}

func TestDeleteTrace(t *testing.T) {
	s := openTestStore(t)

	tr := trace.New("a1", "observation", nil)
	if err := s.SaveTrace("default", tr, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTrace(tr.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.LoadTrace(tr.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Error("deleted trace should be gone")
	}
}

func TestHolograms(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.SaveTrace("busy", trace.New("a1", "observation", nil), nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveTrace("quiet", trace.New("a2", "decision", nil), nil); err != nil {
		t.Fatal(err)
	}

	counts, err := s.Holograms()
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("got %d holograms, want 2", len(counts))
	}
	if counts[0].Name != "busy" || counts[0].Traces != 3 {
		t.Errorf("counts[0] = %+v, want busy/3", counts[0])
	}
}

func TestContextRoundTrip(t *testing.T) {
	s := openTestStore(t)

	state := cooccur.New()
	state.Update([]string{"deploy", "fail"})
	state.Update([]string{"deploy", "rollback"})

	if err := s.SaveContext("default", state); err != nil {
		t.Fatalf("SaveContext() error = %v", err)
	}

	got, err := s.LoadContext("default")
	if err != nil {
		t.Fatalf("LoadContext() error = %v", err)
	}
	if got.TracesProcessed != 2 {
		t.Errorf("TracesProcessed = %d, want 2", got.TracesProcessed)
	}
	if got.CoOccurrence["deploy"]["fail"] != 1.0 {
		t.Errorf("weight deploy->fail = %f, want 1.0", got.CoOccurrence["deploy"]["fail"])
	}
}

func TestLoadContextMissing(t *testing.T) {
	s := openTestStore(t)

	got, err := s.LoadContext("never-saved")
	if err != nil {
		t.Fatalf("LoadContext() error = %v", err)
	}
	if got == nil || got.TokenCounts == nil || got.CoOccurrence == nil {
		t.Fatal("missing context should come back as a usable empty state")
	}
	if got.TracesProcessed != 0 {
		t.Errorf("TracesProcessed = %d, want 0", got.TracesProcessed)
	}
}

func TestSaveContextOverwrites(t *testing.T) {
	s := openTestStore(t)

	state := cooccur.New()
	state.Update([]string{"a", "b"})
	if err := s.SaveContext("default", state); err != nil {
		t.Fatal(err)
	}
	state.Update([]string{"a", "b"})
	if err := s.SaveContext("default", state); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadContext("default")
	if err != nil {
		t.Fatal(err)
	}
	if got.TracesProcessed != 2 {
		t.Errorf("TracesProcessed = %d, want 2", got.TracesProcessed)
	}
}
