package permissions

import "sort"

// GrantSet is an immutable snapshot of one identity's grants at a point in
// time. Snapshots taken before and after a mutation stay stable, which is
// what makes the diff-based change audit sound: the "before" set can never
// silently reflect an in-progress mutation.
type GrantSet struct {
	grants map[Grant]struct{}
}

// NewGrantSet builds a snapshot from a slice of grants.
// Duplicates collapse; the input slice is not retained.
func NewGrantSet(grants []Grant) GrantSet {
	set := make(map[Grant]struct{}, len(grants))
	for _, g := range grants {
		set[g] = struct{}{}
	}
	return GrantSet{grants: set}
}

// Has reports whether the set contains the grant.
func (s GrantSet) Has(resource Resource, access Access) bool {
	_, ok := s.grants[Grant{Resource: resource, Access: access}]
	return ok
}

// Len returns the number of grants in the set.
func (s GrantSet) Len() int {
	return len(s.grants)
}

// Grants returns the grants sorted by codename, for stable display and
// deterministic audit ordering.
func (s GrantSet) Grants() []Grant {
	out := make([]Grant, 0, len(s.grants))
	for g := range s.grants {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Codename() < out[j].Codename()
	})
	return out
}

// AccessOn returns the access levels held on the given resource, sorted.
func (s GrantSet) AccessOn(resource Resource) []Access {
	out := make([]Access, 0, 4)
	for g := range s.grants {
		if g.Resource == resource {
			out = append(out, g.Access)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Diff computes the set differences between this snapshot and an earlier
// one: added = s − before, removed = before − s. Both results are sorted by
// codename.
func (s GrantSet) Diff(before GrantSet) (added, removed []Grant) {
	for g := range s.grants {
		if _, ok := before.grants[g]; !ok {
			added = append(added, g)
		}
	}
	for g := range before.grants {
		if _, ok := s.grants[g]; !ok {
			removed = append(removed, g)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i].Codename() < added[j].Codename() })
	sort.Slice(removed, func(i, j int) bool { return removed[i].Codename() < removed[j].Codename() })
	return added, removed
}
