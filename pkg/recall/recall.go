// Package recall indexes encoded trace vectors for similarity search,
// backed by chromem-go, a pure-Go embedded vector database. The index is
// the query-side counterpart of the encoder: store Encode output here,
// query with EncodeQuery output.
package recall

import (
	"context"
	"fmt"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/MeshRepublic/kudzu-sub001/pkg/hrr"
	"github.com/MeshRepublic/kudzu-sub001/pkg/memerr"
	"github.com/MeshRepublic/kudzu-sub001/pkg/token"
	"github.com/MeshRepublic/kudzu-sub001/pkg/trace"
)

// Result is one recall hit.
type Result struct {
	TraceID    string
	Purpose    string
	Origin     string
	Content    string
	Similarity float64
}

// Index stores encoded trace vectors and answers top-k similarity queries.
// Safe for concurrent use.
type Index struct {
	mu  sync.RWMutex
	col *chromem.Collection
	dim int
}

// NewIndex creates an in-memory index for vectors of the given dimension.
func NewIndex(dim int) (*Index, error) {
	db := chromem.NewDB()
	// Embeddings are always supplied by the caller, so no embedding
	// function is configured.
	col, err := db.CreateCollection("traces", nil, func(_ context.Context, _ string) ([]float32, error) {
		return nil, fmt.Errorf("recall index only accepts precomputed embeddings")
	})
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{col: col, dim: dim}, nil
}

// Add indexes a trace under its encoded vector. Re-adding the same trace ID
// replaces the previous entry.
func (ix *Index) Add(ctx context.Context, t trace.Trace, vec hrr.Vector) error {
	if len(vec) != ix.dim {
		return memerr.Newf(memerr.CodeDimensionMismatch,
			"index dim %d, vector dim %d", ix.dim, len(vec))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	doc := chromem.Document{
		ID: t.ID,
		Metadata: map[string]string{
			"purpose": t.Purpose,
			"origin":  t.Origin,
		},
		Embedding: vec.Float32s(),
		Content:   token.ExtractHintText(t.Hint),
	}
	if err := ix.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Remove drops a trace from the index. Unknown IDs are a no-op.
func (ix *Index) Remove(ctx context.Context, traceID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.col.Delete(ctx, nil, nil, traceID)
}

// Query returns up to k traces most similar to the query vector, best
// first. where filters on metadata ("purpose", "origin"); nil means no
// filter. An empty index returns no results.
func (ix *Index) Query(ctx context.Context, vec hrr.Vector, k int, where map[string]string) ([]Result, error) {
	if len(vec) != ix.dim {
		return nil, memerr.Newf(memerr.CodeDimensionMismatch,
			"index dim %d, query dim %d", ix.dim, len(vec))
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	// chromem rejects nResults larger than the number of matching
	// documents, and a where filter can shrink that below Count(). Retry
	// with smaller k until the query fits.
	if count := ix.col.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	var hits []chromem.Result
	var err error
	for ; k >= 1; k-- {
		hits, err = ix.col.QueryEmbedding(ctx, vec.Float32s(), k, where, nil)
		if err == nil {
			break
		}
		if !strings.Contains(err.Error(), "nResults must be") {
			return nil, fmt.Errorf("query embedding: %w", err)
		}
	}
	if err != nil {
		// every candidate k failed: nothing matches the filter
		return nil, nil
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			TraceID:    h.ID,
			Purpose:    h.Metadata["purpose"],
			Origin:     h.Metadata["origin"],
			Content:    h.Content,
			Similarity: float64(h.Similarity),
		}
	}
	return results, nil
}

// Size returns the number of indexed traces.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.col.Count()
}
