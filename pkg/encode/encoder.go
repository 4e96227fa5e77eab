// Package encode composes traces into holographic vectors: purpose, content,
// origin, and path are each bound to a role vector and bundled into one
// fixed-size representation suitable for similarity-based recall.
package encode

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MeshRepublic/kudzu-sub001/pkg/cooccur"
	"github.com/MeshRepublic/kudzu-sub001/pkg/hrr"
	"github.com/MeshRepublic/kudzu-sub001/pkg/memerr"
	"github.com/MeshRepublic/kudzu-sub001/pkg/token"
	"github.com/MeshRepublic/kudzu-sub001/pkg/trace"
)

// Encoder turns traces and free-text queries into vectors against a fixed
// codebook. Encoders are cheap to construct and safe for concurrent use;
// all state is the immutable codebook (AddPurpose aside).
type Encoder struct {
	dim  int
	book *hrr.Codebook
}

// New creates an encoder with its own codebook. dim <= 0 selects the
// default dimension.
func New(dim int) *Encoder {
	if dim <= 0 {
		dim = hrr.DefaultDim
	}
	return &Encoder{dim: dim, book: hrr.NewCodebook(dim)}
}

// Dim returns the encoder's vector dimension.
func (e *Encoder) Dim() int {
	return e.dim
}

// Codebook exposes the encoder's codebook, e.g. to register purposes.
func (e *Encoder) Codebook() *hrr.Codebook {
	return e.book
}

// Encode composes a trace into a single unit vector. ctx may be nil, in
// which case tokens use their plain seeded base vectors instead of
// contextual ones.
func (e *Encoder) Encode(t trace.Trace, ctx *cooccur.State) (hrr.Vector, error) {
	purposeRole, _ := e.book.Role(hrr.RolePurpose)
	contentRole, _ := e.book.Role(hrr.RoleContent)
	originRole, _ := e.book.Role(hrr.RoleOrigin)
	pathRole, _ := e.book.Role(hrr.RolePath)

	purposeBound, err := hrr.Bind(purposeRole, e.book.Purpose(t.Purpose))
	if err != nil {
		return nil, err
	}

	content, err := e.contentVector(t.Hint, ctx)
	if err != nil {
		return nil, err
	}
	contentBound, err := hrr.Bind(contentRole, content)
	if err != nil {
		return nil, err
	}

	originBound, err := hrr.Bind(originRole, hrr.Seeded("origin_"+t.Origin, e.dim))
	if err != nil {
		return nil, err
	}

	pathBound, err := hrr.Bind(pathRole, e.pathVector(t.Path))
	if err != nil {
		return nil, err
	}

	return hrr.Bundle([]hrr.Vector{purposeBound, contentBound, originBound, pathBound})
}

// EncodeQuery vectorizes free text through the same pipeline as a trace's
// "content" hint field, so queries land in the same subspace as the content
// component of stored trace vectors. No purpose, origin, or path components.
func (e *Encoder) EncodeQuery(text string, ctx *cooccur.State) (hrr.Vector, error) {
	contentRole, _ := e.book.Role(hrr.RoleContent)

	tokens := token.Tokenize(text)
	if len(tokens) == 0 {
		return hrr.Bind(contentRole, hrr.Seeded(text, e.dim))
	}

	bundle, err := e.tokenBundle(tokens, ctx)
	if err != nil {
		return nil, err
	}
	// Stored content wraps each field bundle in its field role before the
	// content role. The query must take the same two bindings or the two
	// sides share no subspace and similarity is noise.
	fieldBound, err := hrr.Bind(e.book.FieldRole("content"), bundle)
	if err != nil {
		return nil, err
	}
	return hrr.Bind(contentRole, fieldBound)
}

// DecodePurpose unbinds the purpose role from an encoded vector and scans
// the purpose codebook for the best match.
func (e *Encoder) DecodePurpose(v hrr.Vector) (string, float64, error) {
	purposeRole, _ := e.book.Role(hrr.RolePurpose)
	filler, err := hrr.Unbind(v, purposeRole)
	if err != nil {
		return "", 0, err
	}
	return hrr.Decode(filler, e.book.Purposes())
}

// Consolidate bundles the encoded vectors of many traces into one composite
// memory, every trace weighted equally.
func (e *Encoder) Consolidate(traces []trace.Trace, ctx *cooccur.State) (hrr.Vector, error) {
	if len(traces) == 0 {
		return nil, memerr.New(memerr.CodeEmptyInput, "consolidate of zero traces")
	}
	vectors := make([]hrr.Vector, len(traces))
	for i, t := range traces {
		v, err := e.Encode(t, ctx)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return hrr.Bundle(vectors)
}

// Weighted pairs a trace with an importance score for weighted
// consolidation.
type Weighted struct {
	Trace trace.Trace
	Score float64
}

// ConsolidateWeighted scales each trace's vector by its score, sums without
// per-term normalization, and normalizes once at the end, so
// higher-importance traces dominate the composite.
func (e *Encoder) ConsolidateWeighted(pairs []Weighted, ctx *cooccur.State) (hrr.Vector, error) {
	if len(pairs) == 0 {
		return nil, memerr.New(memerr.CodeEmptyInput, "consolidate of zero traces")
	}

	sum := make(hrr.Vector, e.dim)
	for _, p := range pairs {
		v, err := e.Encode(p.Trace, ctx)
		if err != nil {
			return nil, err
		}
		scaled := hrr.Scale(v, p.Score)
		if sum, err = hrr.Add(sum, scaled); err != nil {
			return nil, err
		}
	}
	return hrr.Normalize(sum), nil
}

// contentVector vectorizes the hint per-field: each field's tokens are
// bundled and bound with the field's role, and the per-field bindings are
// bundled into one content vector. A hint yielding no tokens at all falls
// back to a seeded hash of its textual representation.
func (e *Encoder) contentVector(hint map[string]any, ctx *cooccur.State) (hrr.Vector, error) {
	fields := token.TokenizeHintByField(hint)
	if len(fields) == 0 {
		return hrr.Seeded(hintDigest(hint), e.dim), nil
	}

	bound := make([]hrr.Vector, 0, len(fields))
	for _, ft := range fields {
		bundle, err := e.tokenBundle(ft.Tokens, ctx)
		if err != nil {
			return nil, err
		}
		b, err := hrr.Bind(e.book.FieldRole(ft.Field), bundle)
		if err != nil {
			return nil, err
		}
		bound = append(bound, b)
	}
	return hrr.Bundle(bound)
}

// tokenBundle bundles the (contextual) vectors of a token list.
func (e *Encoder) tokenBundle(tokens []string, ctx *cooccur.State) (hrr.Vector, error) {
	vectors := make([]hrr.Vector, len(tokens))
	for i, tok := range tokens {
		if ctx != nil {
			vectors[i] = ctx.ContextualVector(tok, e.dim)
		} else {
			vectors[i] = hrr.Seeded(tok, e.dim)
		}
	}
	return hrr.Bundle(vectors)
}

// pathVector seeds vectors from the path's first element, last element, and
// length, and bundles them. Membership in between is deliberately not
// encoded; first/last/length is enough signal for recall.
func (e *Encoder) pathVector(path []string) hrr.Vector {
	first, last := "", ""
	if len(path) > 0 {
		first, last = path[0], path[len(path)-1]
	}
	vectors := []hrr.Vector{
		hrr.Seeded("path_first_"+first, e.dim),
		hrr.Seeded("path_last_"+last, e.dim),
		hrr.Seeded("path_len_"+strconv.Itoa(len(path)), e.dim),
	}
	v, _ := hrr.Bundle(vectors) // dims match by construction
	return v
}

// hintDigest renders a hint deterministically (sorted keys) for the
// no-token fallback seed.
func hintDigest(hint map[string]any) string {
	keys := make([]string, 0, len(hint))
	for k := range hint {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, hint[k]))
	}
	return "hint{" + strings.Join(parts, " ") + "}"
}
