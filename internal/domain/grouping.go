package domain

import "sort"

// ResponseGroup is the set of original positions whose items share one
// canonical key. Indices are always strictly ascending, so Indices[0]
// identifies the representative (first-occurring) member.
type ResponseGroup struct {
	// Key is the canonical key shared by every member.
	Key string

	// Kind is the payload kind of the members. Items sharing a canonical
	// key share a kind because the key is tag-disambiguated.
	Kind ResponseKind

	// Indices lists the 0-based original positions of the members, in
	// ascending order.
	Indices []int
}

// Count returns the number of members in the group.
func (g ResponseGroup) Count() int { return len(g.Indices) }

// GroupResponses buckets items by canonical key in a single
// left-to-right scan. Groups appear in first-occurrence order and each
// group's index list is ascending, which RankGroups relies on for
// representative selection and ranking tie-breaks. O(n) time and space.
func GroupResponses(items []ResponseItem) []ResponseGroup {
	groups := make([]ResponseGroup, 0, len(items))
	byKey := make(map[string]int, len(items))

	for i, item := range items {
		key := item.CanonicalKey()
		if pos, ok := byKey[key]; ok {
			groups[pos].Indices = append(groups[pos].Indices, i)
			continue
		}
		byKey[key] = len(groups)
		groups = append(groups, ResponseGroup{
			Key:     key,
			Kind:    item.Kind,
			Indices: []int{i},
		})
	}

	return groups
}

// RankGroups orders groups by descending member count. Equal counts are
// broken deterministically by ascending first original index, so ranking
// never depends on map-iteration artifacts. The input slice is not
// modified; a sorted copy is returned.
func RankGroups(groups []ResponseGroup) []ResponseGroup {
	ranked := make([]ResponseGroup, len(groups))
	copy(ranked, groups)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count() != ranked[j].Count() {
			return ranked[i].Count() > ranked[j].Count()
		}
		return ranked[i].Indices[0] < ranked[j].Indices[0]
	})

	return ranked
}
