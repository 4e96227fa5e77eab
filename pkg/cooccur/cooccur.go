// Package cooccur learns token associations over time and uses them to bias
// vector generation toward semantic proximity: two traces sharing no literal
// token still match if their tokens frequently co-occur elsewhere.
//
// State is the one genuinely mutable structure in the memory substrate. It
// is NOT safe for concurrent mutation: give each State a single owner and
// serialize updates through it (hologram.Hologram does exactly that). Reads
// through ContextualVector are only safe when no Update/Decay/Prune runs
// concurrently.
package cooccur

import (
	"sort"

	"github.com/MeshRepublic/kudzu-sub001/pkg/hrr"
)

// Defaults for blending and maintenance.
const (
	DefaultBlendStrength  = 0.3
	DefaultTopNeighbors   = 5
	DefaultDecayFactor    = 0.98
	DefaultPruneThreshold = 1.0
)

// State holds learned co-occurrence statistics. All fields are exported so
// the persistence layer can serialize the state verbatim (JSON).
type State struct {
	// TokenCounts tracks how many times each token has been seen.
	TokenCounts map[string]int64 `json:"token_counts"`
	// CoOccurrence holds directed association weights: token -> neighbor -> weight.
	CoOccurrence map[string]map[string]float64 `json:"co_occurrence"`
	// BlendStrength scales how much neighbor context bends a token's base vector.
	BlendStrength float64 `json:"blend_strength"`
	// TracesProcessed counts Update calls, i.e. traces learned from.
	TracesProcessed int64 `json:"traces_processed"`
}

// New returns an empty State with default blend strength.
func New() *State {
	return &State{
		TokenCounts:   make(map[string]int64),
		CoOccurrence:  make(map[string]map[string]float64),
		BlendStrength: DefaultBlendStrength,
	}
}

// Neighbor is a token associated with another token, with its weight.
type Neighbor struct {
	Token  string
	Weight float64
}

// Update records one trace's token list: every ordered pair of distinct
// tokens (both directions) gains 1.0 of weight, every token's occurrence
// count is incremented, and the processed-trace counter advances.
//
// Not safe for concurrent use on the same State.
func (s *State) Update(tokens []string) {
	for _, tok := range tokens {
		s.TokenCounts[tok]++
	}

	for i, tok := range tokens {
		for j, neighbor := range tokens {
			if i == j || tok == neighbor {
				continue
			}
			row := s.CoOccurrence[tok]
			if row == nil {
				row = make(map[string]float64)
				s.CoOccurrence[tok] = row
			}
			row[neighbor] += 1.0
		}
	}

	s.TracesProcessed++
}

// TopNeighbors returns the k highest-weight neighbors of a token in
// descending weight order. Ties break on token name so the result is
// deterministic.
func (s *State) TopNeighbors(token string, k int) []Neighbor {
	row := s.CoOccurrence[token]
	if len(row) == 0 || k <= 0 {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(row))
	for tok, w := range row {
		neighbors = append(neighbors, Neighbor{Token: tok, Weight: w})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Weight != neighbors[j].Weight {
			return neighbors[i].Weight > neighbors[j].Weight
		}
		return neighbors[i].Token < neighbors[j].Token
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// ContextualVector returns the token's deterministic base vector, bent
// toward its learned neighborhood. With no recorded neighbors the base
// vector comes back unchanged. Otherwise the top neighbors' base vectors
// are bundled with weights normalized to sum to one, scaled by
// BlendStrength, added to the base, and the sum re-normalized.
func (s *State) ContextualVector(tok string, dim int) hrr.Vector {
	base := hrr.Seeded(tok, dim)

	neighbors := s.TopNeighbors(tok, DefaultTopNeighbors)
	if len(neighbors) == 0 {
		return base
	}

	var total float64
	for _, n := range neighbors {
		total += n.Weight
	}

	blend := make(hrr.Vector, dim)
	for _, n := range neighbors {
		nv := hrr.Seeded(n.Token, dim)
		w := n.Weight / total
		for i, x := range nv {
			blend[i] += w * x
		}
	}

	scaled := hrr.Scale(hrr.Normalize(blend), s.BlendStrength)
	sum, _ := hrr.Add(base, scaled) // dims match by construction
	return hrr.Normalize(sum)
}

// Decay multiplies every association weight by factor (DefaultDecayFactor
// when factor <= 0), letting stale associations fade.
func (s *State) Decay(factor float64) {
	if factor <= 0 {
		factor = DefaultDecayFactor
	}
	for _, row := range s.CoOccurrence {
		for neighbor := range row {
			row[neighbor] *= factor
		}
	}
}

// Prune drops association weights below threshold (DefaultPruneThreshold
// when threshold <= 0) and removes tokens left with no neighbors, bounding
// memory growth.
func (s *State) Prune(threshold float64) {
	if threshold <= 0 {
		threshold = DefaultPruneThreshold
	}
	for tok, row := range s.CoOccurrence {
		for neighbor, w := range row {
			if w < threshold {
				delete(row, neighbor)
			}
		}
		if len(row) == 0 {
			delete(s.CoOccurrence, tok)
		}
	}
}

// Maintain runs one decay-then-prune cycle with default parameters. Run it
// periodically; how often is the owner's call.
func (s *State) Maintain() {
	s.Decay(DefaultDecayFactor)
	s.Prune(DefaultPruneThreshold)
}

// NeighborCount returns how many tokens currently have recorded neighbors.
func (s *State) NeighborCount() int {
	return len(s.CoOccurrence)
}
