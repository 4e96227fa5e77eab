// Package hrr implements the holographic reduced representation engine:
// fixed-length vector algebra supporting compositional binding (role+filler),
// superposition (bundling), and approximate similarity-based retrieval.
//
// All operations are pure and stateless. Bind and Unbind use direct circular
// convolution, O(n^2) per call. That is deliberate: at the default dimension
// of 512 the constant is small and the code stays obvious. An FFT-based
// O(n log n) convolution is the upgrade path if dimension or call volume
// grows.
package hrr

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/MeshRepublic/kudzu-sub001/pkg/memerr"
)

// DefaultDim is the default vector dimension.
const DefaultDim = 512

// Vector is a fixed-length holographic vector. Vectors are value types with
// no identity; equality is numeric. Except where noted, the engine keeps
// vectors unit-normalized.
type Vector []float64

// Random draws dim samples from a standard normal distribution and
// L2-normalizes the result. Each call produces a fresh vector.
func Random(dim int) Vector {
	v := make(Vector, dim)
	for i := range v {
		v[i] = rand.NormFloat64()
	}
	return Normalize(v)
}

// Seeded deterministically generates a unit vector from a seed string.
//
// The seed is hashed with SHA-256 and the digest initializes a PCG
// generator, so the same seed and dimension always yield the identical
// vector across processes. This determinism is load-bearing: independent
// agents compute the same vector for a shared symbol without any handshake.
func Seeded(seed string, dim int) Vector {
	sum := sha256.Sum256([]byte(seed))
	src := rand.NewPCG(
		binary.BigEndian.Uint64(sum[0:8]),
		binary.BigEndian.Uint64(sum[8:16]),
	)
	rng := rand.New(src)

	v := make(Vector, dim)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return Normalize(v)
}

// Normalize returns a unit-length copy of v. A zero vector is returned
// unchanged (as a copy) since it has no direction.
func Normalize(v Vector) Vector {
	var sumSquares float64
	for _, x := range v {
		sumSquares += x * x
	}

	out := make(Vector, len(v))
	if sumSquares == 0 {
		return out
	}
	norm := math.Sqrt(sumSquares)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// Bind composes two vectors by circular convolution and re-normalizes:
//
//	c[i] = sum_j a[j] * b[(i-j) mod n]
//
// The result is dissimilar to both inputs, which is what lets a role/filler
// pair be stored inside a composite without leaking either part.
func Bind(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, memerr.Newf(memerr.CodeDimensionMismatch,
			"bind: %d vs %d", len(a), len(b))
	}

	n := len(a)
	c := make(Vector, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			k := i - j
			if k < 0 {
				k += n
			}
			sum += a[j] * b[k]
		}
		c[i] = sum
	}
	return Normalize(c), nil
}

// Inverse returns the approximate convolution inverse of v: the first
// element stays put and the rest are reversed. Binding with the inverse
// undoes a binding approximately, not exactly.
func Inverse(v Vector) Vector {
	n := len(v)
	inv := make(Vector, n)
	if n == 0 {
		return inv
	}
	inv[0] = v[0]
	for i := 1; i < n; i++ {
		inv[i] = v[n-i]
	}
	return inv
}

// Unbind approximately recovers the filler from a bound pair given the role.
// For clean bindings of seeded vectors the recovered filler's similarity to
// the original is typically >= 0.3; exact recovery must not be assumed.
func Unbind(bound, role Vector) (Vector, error) {
	if len(bound) != len(role) {
		return nil, memerr.Newf(memerr.CodeDimensionMismatch,
			"unbind: %d vs %d", len(bound), len(role))
	}
	return Bind(bound, Inverse(role))
}

// Bundle superimposes vectors by element-wise sum and normalizes. The
// result retains partial similarity to every input (graceful degradation).
func Bundle(vectors []Vector) (Vector, error) {
	if len(vectors) == 0 {
		return nil, memerr.New(memerr.CodeEmptyInput, "bundle of zero vectors")
	}

	dim := len(vectors[0])
	sum := make(Vector, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, memerr.Newf(memerr.CodeDimensionMismatch,
				"bundle: %d vs %d", dim, len(v))
		}
		for i, x := range v {
			sum[i] += x
		}
	}
	return Normalize(sum), nil
}

// Probe returns the dot product of memory and cue. For unit vectors this is
// the cosine similarity.
func Probe(memory, cue Vector) (float64, error) {
	if len(memory) != len(cue) {
		return 0, memerr.Newf(memerr.CodeDimensionMismatch,
			"probe: %d vs %d", len(memory), len(cue))
	}
	var dot float64
	for i, x := range memory {
		dot += x * cue[i]
	}
	return dot, nil
}

// Similarity normalizes both vectors and returns their dot product, i.e.
// the cosine similarity in [-1, 1].
func Similarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, memerr.Newf(memerr.CodeDimensionMismatch,
			"similarity: %d vs %d", len(a), len(b))
	}
	return Probe(Normalize(a), Normalize(b))
}

// Scale multiplies every element by k without normalizing. Building block
// for weighted composition.
func Scale(v Vector, k float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x * k
	}
	return out
}

// Add sums two vectors element-wise without normalizing.
func Add(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, memerr.Newf(memerr.CodeDimensionMismatch,
			"add: %d vs %d", len(a), len(b))
	}
	out := make(Vector, len(a))
	for i, x := range a {
		out[i] = x + b[i]
	}
	return out, nil
}

// Decode scans a codebook and returns the key whose vector is most similar
// to the query, with its score. An empty codebook is a NOT_FOUND error.
func Decode(query Vector, codebook map[string]Vector) (string, float64, error) {
	if len(codebook) == 0 {
		return "", 0, memerr.New(memerr.CodeNotFound, "decode against empty codebook")
	}

	bestKey := ""
	bestScore := math.Inf(-1)
	for key, v := range codebook {
		score, err := Similarity(query, v)
		if err != nil {
			return "", 0, err
		}
		// Tie-break on key so the scan is deterministic across map order.
		if score > bestScore || (score == bestScore && key < bestKey) {
			bestKey = key
			bestScore = score
		}
	}
	return bestKey, bestScore, nil
}

// MarshalBinary encodes the vector as a little-endian uint32 length followed
// by IEEE-754 float64 elements. The round-trip is lossless.
func (v Vector) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4+8*len(v))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(v)))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[4+8*i:], math.Float64bits(x))
	}
	return buf, nil
}

// UnmarshalBinary decodes a vector produced by MarshalBinary.
func (v *Vector) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return memerr.Newf(memerr.CodeDimensionMismatch,
			"binary vector too short: %d bytes", len(data))
	}
	n := int(binary.LittleEndian.Uint32(data[0:4]))
	if len(data) != 4+8*n {
		return memerr.Newf(memerr.CodeDimensionMismatch,
			"binary vector length %d does not hold %d elements", len(data), n)
	}
	out := make(Vector, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[4+8*i:]))
	}
	*v = out
	return nil
}

// Float32s returns a float32 copy, the layout embedded vector indexes use.
func (v Vector) Float32s() []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
