package hrr

import (
	"errors"
	"math"
	"testing"

	"github.com/MeshRepublic/kudzu-sub001/pkg/memerr"
)

func TestSeededDeterministic(t *testing.T) {
	a := Seeded("deploy", 256)
	b := Seeded("deploy", 256)

	sim, err := Similarity(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if sim < 0.999 {
		t.Errorf("same seed similarity = %f, want ~1.0", sim)
	}
}

func TestSeededDistinct(t *testing.T) {
	a := Seeded("deploy", 512)
	b := Seeded("rollback", 512)

	sim, err := Similarity(a, b)
	if err != nil {
		t.Fatal(err)
	}
	// random high-dimensional vectors are near-orthogonal
	if math.Abs(sim) > 0.2 {
		t.Errorf("different seed similarity = %f, want near zero", sim)
	}
}

func TestSeededNormalized(t *testing.T) {
	v := Seeded("anything", 512)
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("seeded vector norm = %f, want 1.0", math.Sqrt(norm))
	}
}

func TestBindUnbindRecovers(t *testing.T) {
	role := Seeded("role_content", 512)
	filler := Seeded("deploy failure", 512)

	bound, err := Bind(role, filler)
	if err != nil {
		t.Fatal(err)
	}

	recovered, err := Unbind(bound, role)
	if err != nil {
		t.Fatal(err)
	}

	sim, err := Similarity(recovered, filler)
	if err != nil {
		t.Fatal(err)
	}
	if sim < 0.3 {
		t.Errorf("unbind similarity = %f, want >= 0.3", sim)
	}
}

func TestBindDissimilarToInputs(t *testing.T) {
	a := Seeded("alpha", 512)
	b := Seeded("beta", 512)

	bound, err := Bind(a, b)
	if err != nil {
		t.Fatal(err)
	}

	simA, _ := Similarity(bound, a)
	simB, _ := Similarity(bound, b)
	if math.Abs(simA) > 0.2 || math.Abs(simB) > 0.2 {
		t.Errorf("bound vector too similar to inputs: %f, %f", simA, simB)
	}
}

func TestBindDimensionMismatch(t *testing.T) {
	a := Seeded("alpha", 256)
	b := Seeded("beta", 512)

	_, err := Bind(a, b)
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if !errors.Is(err, memerr.ErrDimensionMismatch) {
		t.Errorf("error = %v, want dimension mismatch", err)
	}
}

func TestBundleRetainsComponents(t *testing.T) {
	components := []Vector{
		Seeded("observation one", 512),
		Seeded("observation two", 512),
		Seeded("observation three", 512),
	}

	bundled, err := Bundle(components)
	if err != nil {
		t.Fatal(err)
	}

	for i, c := range components {
		sim, err := Similarity(bundled, c)
		if err != nil {
			t.Fatal(err)
		}
		if sim <= 0.2 {
			t.Errorf("bundle similarity to component %d = %f, want > 0.2", i, sim)
		}
	}
}

func TestBundleDegradesGracefully(t *testing.T) {
	var components []Vector
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		components = append(components, Seeded(s, 512))
	}

	small, err := Bundle(components[:2])
	if err != nil {
		t.Fatal(err)
	}
	large, err := Bundle(components)
	if err != nil {
		t.Fatal(err)
	}

	simSmall, _ := Similarity(small, components[0])
	simLarge, _ := Similarity(large, components[0])
	if simLarge >= simSmall {
		t.Errorf("similarity should degrade with bundle size: %f -> %f", simSmall, simLarge)
	}
	if simLarge <= 0.2 {
		t.Errorf("large bundle similarity = %f, want > 0.2", simLarge)
	}
}

func TestBundleEmpty(t *testing.T) {
	_, err := Bundle(nil)
	if !errors.Is(err, memerr.ErrEmptyInput) {
		t.Errorf("error = %v, want empty input", err)
	}
}

func TestBundleDimensionMismatch(t *testing.T) {
	_, err := Bundle([]Vector{Seeded("a", 256), Seeded("b", 512)})
	if !errors.Is(err, memerr.ErrDimensionMismatch) {
		t.Errorf("error = %v, want dimension mismatch", err)
	}
}

func TestUnbindFromBundle(t *testing.T) {
	roleA := Seeded("role_purpose", 512)
	roleB := Seeded("role_origin", 512)
	fillerA := Seeded("purpose_discovery", 512)
	fillerB := Seeded("origin_agent-1", 512)

	pairA, _ := Bind(roleA, fillerA)
	pairB, _ := Bind(roleB, fillerB)
	memory, err := Bundle([]Vector{pairA, pairB})
	if err != nil {
		t.Fatal(err)
	}

	recovered, err := Unbind(memory, roleA)
	if err != nil {
		t.Fatal(err)
	}

	simRight, _ := Similarity(recovered, fillerA)
	simWrong, _ := Similarity(recovered, fillerB)
	if simRight <= simWrong {
		t.Errorf("unbind should recover the right filler: %f vs %f", simRight, simWrong)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	v := Normalize(make(Vector, 8))
	for _, x := range v {
		if x != 0 {
			t.Fatal("normalizing the zero vector should return zeros")
		}
	}
}

func TestDecode(t *testing.T) {
	codebook := map[string]Vector{
		"observation": Seeded("purpose_observation", 512),
		"decision":    Seeded("purpose_decision", 512),
		"learning":    Seeded("purpose_learning", 512),
	}

	noisy, err := Bundle([]Vector{codebook["decision"], Seeded("noise", 512)})
	if err != nil {
		t.Fatal(err)
	}

	name, score, err := Decode(noisy, codebook)
	if err != nil {
		t.Fatal(err)
	}
	if name != "decision" {
		t.Errorf("Decode() = %q (%.3f), want decision", name, score)
	}
}

func TestDecodeEmptyCodebook(t *testing.T) {
	_, _, err := Decode(Seeded("x", 512), nil)
	if !errors.Is(err, memerr.ErrNotFound) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	v := Seeded("round trip", 128)
	data, err := v.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	var got Vector
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(v) {
		t.Fatalf("length = %d, want %d", len(got), len(v))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Fatalf("element %d = %v, want %v", i, got[i], v[i])
		}
	}
}

func TestUnmarshalBinaryTruncated(t *testing.T) {
	v := Seeded("x", 16)
	data, _ := v.MarshalBinary()

	var got Vector
	if err := got.UnmarshalBinary(data[:len(data)-3]); err == nil {
		t.Fatal("expected error on truncated data")
	}
}

func TestScaleAndAdd(t *testing.T) {
	a := Vector{1, 2, 3}
	b := Vector{4, 5, 6}

	s := Scale(a, 2)
	if s[0] != 2 || s[2] != 6 {
		t.Errorf("Scale() = %v", s)
	}

	sum, err := Add(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if sum[0] != 5 || sum[2] != 9 {
		t.Errorf("Add() = %v", sum)
	}

	if _, err := Add(a, Vector{1}); err == nil {
		t.Fatal("expected dimension mismatch")
	}
}

func TestProbe(t *testing.T) {
	a := Seeded("alpha", 512)

	self, err := Probe(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if self < 0.999 {
		t.Errorf("self probe = %f, want ~1.0", self)
	}
}

func TestCodebookFieldRole(t *testing.T) {
	cb := NewCodebook(512)

	unknown := cb.FieldRole("some_custom_field")
	contentRole, ok := cb.Role(RoleContent)
	if !ok {
		t.Fatal("content role missing from codebook")
	}

	sim, err := Similarity(unknown, contentRole)
	if err != nil {
		t.Fatal(err)
	}
	if sim < 0.999 {
		t.Errorf("unknown field should fall back to the content role, similarity = %f", sim)
	}

	summary := cb.FieldRole("summary")
	simDistinct, _ := Similarity(summary, cb.FieldRole("content"))
	if simDistinct > 0.2 {
		t.Errorf("summary and content field roles should be distinct, similarity = %f", simDistinct)
	}
}

func TestCodebookPurposes(t *testing.T) {
	cb := NewCodebook(512)

	if _, ok := cb.Purposes()["observation"]; !ok {
		t.Error("observation should be a known purpose")
	}

	cb.AddPurpose("triage")
	if _, ok := cb.Purposes()["triage"]; !ok {
		t.Error("AddPurpose should register the purpose")
	}

	// unknown purposes still get a deterministic vector
	v1 := cb.Purpose("never-registered")
	v2 := cb.Purpose("never-registered")
	sim, _ := Similarity(v1, v2)
	if sim < 0.999 {
		t.Errorf("unknown purpose vectors should be deterministic, similarity = %f", sim)
	}
}
