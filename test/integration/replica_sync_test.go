//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/MeshRepublic/kudzu-sub001/pkg/hologram"
	"github.com/MeshRepublic/kudzu-sub001/pkg/trace"
)

// Two replicas of the same hologram exchange trace bodies and membership
// deltas and must converge on the same visible set, including removals.
func TestReplicaConvergence(t *testing.T) {
	ctx := context.Background()

	newReplica := func(node string) *hologram.Hologram {
		h, err := hologram.New(node, "shared", "observation", hologram.Options{Dim: 256})
		if err != nil {
			t.Fatal(err)
		}
		return h
	}
	a := newReplica("node-a")
	b := newReplica("node-b")

	t1 := trace.New("agent-1", "observation", map[string]any{"content": "cache latency spiked"})
	t2 := trace.New("agent-2", "observation", map[string]any{"content": "replica lag on primary"})

	if err := a.Record(ctx, t1); err != nil {
		t.Fatal(err)
	}
	if err := b.Record(ctx, t2); err != nil {
		t.Fatal(err)
	}

	// ship bodies both ways, then membership both ways
	if err := a.Record(ctx, t2); err != nil {
		t.Fatal(err)
	}
	if err := b.Record(ctx, t1); err != nil {
		t.Fatal(err)
	}
	if err := a.ApplyMembership(ctx, b.Membership()); err != nil {
		t.Fatal(err)
	}
	if err := b.ApplyMembership(ctx, a.Membership()); err != nil {
		t.Fatal(err)
	}

	if a.Len() != 2 || b.Len() != 2 {
		t.Fatalf("replicas diverged: a=%d b=%d traces", a.Len(), b.Len())
	}

	// a removes t1; the tombstones must win on b after sync
	if err := a.Forget(ctx, t1.ID); err != nil {
		t.Fatal(err)
	}
	if err := b.ApplyMembership(ctx, a.Membership()); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Get(t1.ID); ok {
		t.Error("removal did not propagate to replica b")
	}
	if _, ok := b.Get(t2.ID); !ok {
		t.Error("surviving trace lost during sync")
	}

	// b re-recording t1 after observing the removal must not resurrect it
	if err := b.Record(ctx, t1); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Get(t1.ID); ok {
		t.Error("observed removal overridden without a fresh add tag")
	}
}

// Divergent copies of one trace converge through Record's merge path: the
// union of visited agents and the dominant clock survive on both replicas.
func TestTraceMergeAcrossReplicas(t *testing.T) {
	ctx := context.Background()

	a, err := hologram.New("node-a", "shared", "observation", hologram.Options{Dim: 256})
	if err != nil {
		t.Fatal(err)
	}
	b, err := hologram.New("node-b", "shared", "observation", hologram.Options{Dim: 256})
	if err != nil {
		t.Fatal(err)
	}

	base := trace.New("agent-1", "observation", map[string]any{"content": "shared incident record"})
	if err := a.Record(ctx, base); err != nil {
		t.Fatal(err)
	}
	if err := b.Record(ctx, base); err != nil {
		t.Fatal(err)
	}

	onA := trace.Follow(base, "agent-2")
	onB := trace.Follow(base, "agent-3")
	if err := a.Record(ctx, onA); err != nil {
		t.Fatal(err)
	}
	if err := b.Record(ctx, onB); err != nil {
		t.Fatal(err)
	}

	// exchange the divergent copies
	gotA, _ := a.Get(base.ID)
	gotB, _ := b.Get(base.ID)
	if err := a.Record(ctx, gotB); err != nil {
		t.Fatal(err)
	}
	if err := b.Record(ctx, gotA); err != nil {
		t.Fatal(err)
	}

	for name, h := range map[string]*hologram.Hologram{"a": a, "b": b} {
		merged, ok := h.Get(base.ID)
		if !ok {
			t.Fatalf("replica %s lost the merged trace", name)
		}
		for _, agent := range []string{"agent-1", "agent-2", "agent-3"} {
			if !merged.Visited(agent) {
				t.Errorf("replica %s: merged path %v missing %s", name, merged.Path, agent)
			}
		}
	}
}
