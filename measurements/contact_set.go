package measurements

import (
	"slices"

	"github.com/samber/lo"
)

// ContactSet is a set of contact ids.
type ContactSet map[int]struct{}

// NewContactSet returns a set holding ids.
func NewContactSet(ids ...int) ContactSet {
	s := make(ContactSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id.
func (s ContactSet) Add(id int) {
	s[id] = struct{}{}
}

// Contains returns whether id is in the set.
func (s ContactSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids.
func (s ContactSet) Len() int {
	return len(s)
}

// Sorted returns the ids in increasing order.
func (s ContactSet) Sorted() []int {
	ids := lo.Keys(map[int]struct{}(s))
	slices.Sort(ids)
	return ids
}

// Difference returns the ids of s that are not in other.
func (s ContactSet) Difference(other ContactSet) ContactSet {
	return NewContactSet(lo.Filter(s.Sorted(), func(id int, _ int) bool {
		return !other.Contains(id)
	})...)
}

// Equal returns whether both sets hold the same ids.
func (s ContactSet) Equal(other ContactSet) bool {
	return len(s) == len(other) && len(s.Difference(other)) == 0
}

// Clone returns a copy of the set.
func (s ContactSet) Clone() ContactSet {
	return NewContactSet(s.Sorted()...)
}
