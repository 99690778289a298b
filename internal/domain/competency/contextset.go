package competency

import (
	"sort"
	"strings"
)

// ContextSet is a normalized, order-independent set of context entity
// IDs. The zero value is the empty set. Always build one through
// NewContextSet so every comparison site sees the same representation.
type ContextSet []string

// NewContextSet returns the sorted, deduplicated set of the given IDs.
// Empty IDs are dropped.
func NewContextSet(ids ...string) ContextSet {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make(ContextSet, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Equal reports set equality. Supersets and subsets are not equal.
func (c ContextSet) Equal(other ContextSet) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns a canonical string form usable as a map key.
func (c ContextSet) Key() string {
	return strings.Join(c, "|")
}

// Contains reports membership of a single ID.
func (c ContextSet) Contains(id string) bool {
	i := sort.SearchStrings(c, id)
	return i < len(c) && c[i] == id
}

// Empty reports whether the set has no members.
func (c ContextSet) Empty() bool {
	return len(c) == 0
}
