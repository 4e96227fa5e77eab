// Package orset implements an observed-remove set, the conflict-free
// replicated set used to merge distributed collections (trace IDs, tags,
// peers) without coordination.
//
// Semantics are add-wins: every Add mints a fresh unique tag, Remove
// tombstones only the tags it has observed, and a concurrent re-add
// therefore survives the merge. Merge is commutative, associative, and
// idempotent. Raw storage (tags and tombstones) grows monotonically even
// though the visible set can shrink; compaction is an external policy.
//
// Operations return new sets; values are never mutated in place.
package orset

import (
	"sort"

	"github.com/google/uuid"
)

// Tag uniquely identifies one Add operation on one replica.
type Tag struct {
	ID   string `json:"id"`
	Node string `json:"node"`
}

type tagSet map[Tag]struct{}

// Set is one replica's view of the replicated set.
type Set[T comparable] struct {
	nodeID     string
	elements   map[T]tagSet
	tombstones map[T]tagSet
}

// New creates an empty replica owned by the given node.
func New[T comparable](nodeID string) Set[T] {
	return Set[T]{
		nodeID:     nodeID,
		elements:   map[T]tagSet{},
		tombstones: map[T]tagSet{},
	}
}

// NodeID returns the owning replica's identifier.
func (s Set[T]) NodeID() string {
	return s.nodeID
}

// Add returns a set with elem added under a fresh random tag. Re-adding a
// removed element mints a new tag untouched by old tombstones, which is
// what makes adds win.
func (s Set[T]) Add(elem T) Set[T] {
	next := s.clone()
	tags := next.elements[elem]
	if tags == nil {
		tags = tagSet{}
		next.elements[elem] = tags
	}
	tags[Tag{ID: uuid.NewString(), Node: s.nodeID}] = struct{}{}
	return next
}

// Remove returns a set with every observed tag for elem moved into the
// tombstone set. Removing an absent element is a no-op.
func (s Set[T]) Remove(elem T) Set[T] {
	tags := s.elements[elem]
	if len(tags) == 0 {
		return s
	}

	next := s.clone()
	stones := next.tombstones[elem]
	if stones == nil {
		stones = tagSet{}
		next.tombstones[elem] = stones
	}
	for tag := range tags {
		stones[tag] = struct{}{}
	}
	delete(next.elements, elem)
	return next
}

// Contains reports whether elem has at least one live tag: present in
// elements and absent from the matching tombstones.
func (s Set[T]) Contains(elem T) bool {
	stones := s.tombstones[elem]
	for tag := range s.elements[elem] {
		if _, dead := stones[tag]; !dead {
			return true
		}
	}
	return false
}

// Seen reports whether elem has any history on this replica, visible or
// tombstoned. It distinguishes "never added" from "removed": a removed
// element is no longer Contains but remains Seen.
func (s Set[T]) Seen(elem T) bool {
	return len(s.elements[elem]) > 0 || len(s.tombstones[elem]) > 0
}

// Elements returns the visible members. Order is unspecified.
func (s Set[T]) Elements() []T {
	var out []T
	for elem := range s.elements {
		if s.Contains(elem) {
			out = append(out, elem)
		}
	}
	return out
}

// Len returns the number of visible members.
func (s Set[T]) Len() int {
	n := 0
	for elem := range s.elements {
		if s.Contains(elem) {
			n++
		}
	}
	return n
}

// Merge unions both replicas' elements and tombstones key-wise and
// independently. Tombstones are never subtracted from elements here;
// visibility is computed lazily at query time. The result keeps s's node
// identity.
func (s Set[T]) Merge(other Set[T]) Set[T] {
	next := s.clone()
	for elem, tags := range other.elements {
		dst := next.elements[elem]
		if dst == nil {
			dst = tagSet{}
			next.elements[elem] = dst
		}
		for tag := range tags {
			dst[tag] = struct{}{}
		}
	}
	for elem, stones := range other.tombstones {
		dst := next.tombstones[elem]
		if dst == nil {
			dst = tagSet{}
			next.tombstones[elem] = dst
		}
		for tag := range stones {
			dst[tag] = struct{}{}
		}
	}
	return next
}

// Delta returns the tags present in curr but absent in prev, for both
// elements and tombstones. Merging the delta into prev (or any replica that
// has seen prev) converges it without retransmitting the whole set.
func Delta[T comparable](prev, curr Set[T]) Set[T] {
	diff := New[T](curr.nodeID)
	for elem, tags := range curr.elements {
		seen := prev.elements[elem]
		for tag := range tags {
			if _, ok := seen[tag]; !ok {
				dst := diff.elements[elem]
				if dst == nil {
					dst = tagSet{}
					diff.elements[elem] = dst
				}
				dst[tag] = struct{}{}
			}
		}
	}
	for elem, stones := range curr.tombstones {
		seen := prev.tombstones[elem]
		for tag := range stones {
			if _, ok := seen[tag]; !ok {
				dst := diff.tombstones[elem]
				if dst == nil {
					dst = tagSet{}
					diff.tombstones[elem] = dst
				}
				dst[tag] = struct{}{}
			}
		}
	}
	return diff
}

// Equal compares the visible element sets, not raw storage: two replicas
// with different tag histories but the same membership are equal.
func Equal[T comparable](a, b Set[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, elem := range a.Elements() {
		if !b.Contains(elem) {
			return false
		}
	}
	return true
}

// ToMap returns the raw element and tombstone storage as plain maps of
// element to sorted tag lists, the canonical wire form.
func (s Set[T]) ToMap() (elements, tombstones map[T][]Tag) {
	return exportTags(s.elements), exportTags(s.tombstones)
}

// FromMap reconstructs a replica from its wire form.
func FromMap[T comparable](nodeID string, elements, tombstones map[T][]Tag) Set[T] {
	s := New[T](nodeID)
	for elem, tags := range elements {
		dst := tagSet{}
		for _, tag := range tags {
			dst[tag] = struct{}{}
		}
		s.elements[elem] = dst
	}
	for elem, tags := range tombstones {
		dst := tagSet{}
		for _, tag := range tags {
			dst[tag] = struct{}{}
		}
		s.tombstones[elem] = dst
	}
	return s
}

func exportTags[T comparable](src map[T]tagSet) map[T][]Tag {
	out := make(map[T][]Tag, len(src))
	for elem, tags := range src {
		list := make([]Tag, 0, len(tags))
		for tag := range tags {
			list = append(list, tag)
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Node != list[j].Node {
				return list[i].Node < list[j].Node
			}
			return list[i].ID < list[j].ID
		})
		out[elem] = list
	}
	return out
}

func (s Set[T]) clone() Set[T] {
	next := Set[T]{
		nodeID:     s.nodeID,
		elements:   make(map[T]tagSet, len(s.elements)),
		tombstones: make(map[T]tagSet, len(s.tombstones)),
	}
	for elem, tags := range s.elements {
		dst := make(tagSet, len(tags))
		for tag := range tags {
			dst[tag] = struct{}{}
		}
		next.elements[elem] = dst
	}
	for elem, stones := range s.tombstones {
		dst := make(tagSet, len(stones))
		for tag := range stones {
			dst[tag] = struct{}{}
		}
		next.tombstones[elem] = dst
	}
	return next
}
