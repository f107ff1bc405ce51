package interval

import (
	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
)

// Relation is one of Allen's interval relations.
type Relation int

// Relations in the order DetermineRelation evaluates them.
const (
	RelationUndefined Relation = iota
	RelationOverlaps
	RelationIsOverlappedBy
	RelationEquals
	RelationBegins
	RelationBeginsBy
	RelationEnds
	RelationEndsBy
	RelationBefore
	RelationAfter
	RelationStartsDirectlyBefore
	RelationEndsDirectlyBefore
	RelationIncludes
	RelationIsDuring
)

var relationNames = [...]string{
	RelationUndefined:            "undefined",
	RelationOverlaps:             "overlaps",
	RelationIsOverlappedBy:       "isOverlappedBy",
	RelationEquals:               "equals",
	RelationBegins:               "begins",
	RelationBeginsBy:             "beginsBy",
	RelationEnds:                 "ends",
	RelationEndsBy:               "endsBy",
	RelationBefore:               "before",
	RelationAfter:                "after",
	RelationStartsDirectlyBefore: "startsDirectlyBefore",
	RelationEndsDirectlyBefore:   "endsDirectlyBefore",
	RelationIncludes:             "includes",
	RelationIsDuring:             "isDuring",
}

// String returns the relation name.
func (r Relation) String() string {
	if r < 0 || int(r) >= len(relationNames) {
		return relationNames[RelationUndefined]
	}

	return relationNames[r]
}

// relationOrder is the fixed evaluation order of DetermineRelation. Zero-width
// intervals can satisfy several predicates at once, the first one wins.
var relationOrder = []struct {
	relation Relation
	test     func(a, b Interval, cmp compare.Comparator) bool
}{
	{RelationOverlaps, Interval.Overlaps},
	{RelationIsOverlappedBy, Interval.IsOverlappedBy},
	{RelationEquals, Interval.Equals},
	{RelationBegins, Interval.Begins},
	{RelationBeginsBy, Interval.BeginsBy},
	{RelationEnds, Interval.Ends},
	{RelationEndsBy, Interval.EndsBy},
	{RelationBefore, Interval.Before},
	{RelationAfter, Interval.After},
	{RelationStartsDirectlyBefore, Interval.StartsDirectlyBefore},
	{RelationEndsDirectlyBefore, Interval.EndsDirectlyBefore},
	{RelationIncludes, Interval.Includes},
	{RelationIsDuring, Interval.IsDuring},
}

// DetermineRelation returns the first relation in evaluation order that holds
// between a and b. It fails if cmp cannot compare the two kinds.
func DetermineRelation(a, b Interval, cmp compare.Comparator) (Relation, error) {
	if err := cmp.Check(a.kind, b.kind); err != nil {
		return RelationUndefined, err
	}

	for _, candidate := range relationOrder {
		if candidate.test(a, b, cmp) {
			return candidate.relation, nil
		}
	}

	return RelationUndefined, nil
}

// The predicates below work on normalized bounds and require that cmp.Check
// accepts both kinds.

// Intersects reports whether the two ranges share at least one value.
func (iv Interval) Intersects(other Interval, cmp compare.Comparator) bool {
	return cmp.Compare(iv.normStart, other.normEnd) <= 0 && cmp.Compare(iv.normEnd, other.normStart) >= 0
}

// Overlaps reports whether iv starts first and ends inside other.
func (iv Interval) Overlaps(other Interval, cmp compare.Comparator) bool {
	return cmp.Compare(iv.normStart, other.normStart) < 0 &&
		cmp.Compare(other.normStart, iv.normEnd) <= 0 &&
		cmp.Compare(iv.normEnd, other.normEnd) < 0
}

// IsOverlappedBy reports whether other overlaps iv.
func (iv Interval) IsOverlappedBy(other Interval, cmp compare.Comparator) bool {
	return other.Overlaps(iv, cmp)
}

// Equals reports whether both normalized bounds coincide.
func (iv Interval) Equals(other Interval, cmp compare.Comparator) bool {
	return cmp.Compare(iv.normStart, other.normStart) == 0 && cmp.Compare(iv.normEnd, other.normEnd) == 0
}

// Begins reports whether iv shares its start with other and ends first.
func (iv Interval) Begins(other Interval, cmp compare.Comparator) bool {
	return cmp.Compare(iv.normStart, other.normStart) == 0 && cmp.Compare(iv.normEnd, other.normEnd) < 0
}

// BeginsBy reports whether other begins iv.
func (iv Interval) BeginsBy(other Interval, cmp compare.Comparator) bool {
	return other.Begins(iv, cmp)
}

// Ends reports whether iv shares its end with other and starts later.
func (iv Interval) Ends(other Interval, cmp compare.Comparator) bool {
	return cmp.Compare(iv.normEnd, other.normEnd) == 0 && cmp.Compare(iv.normStart, other.normStart) > 0
}

// EndsBy reports whether other ends iv.
func (iv Interval) EndsBy(other Interval, cmp compare.Comparator) bool {
	return other.Ends(iv, cmp)
}

// Before reports whether iv ends before other starts, with at least one
// representable value between them.
func (iv Interval) Before(other Interval, cmp compare.Comparator) bool {
	return cmp.Compare(iv.normEnd, other.normStart) < 0 && !iv.StartsDirectlyBefore(other, cmp)
}

// After reports whether iv starts after other ends, with a gap between them.
func (iv Interval) After(other Interval, cmp compare.Comparator) bool {
	return other.Before(iv, cmp)
}

// StartsDirectlyBefore reports whether other starts at the value directly
// following iv's end, so that the two ranges touch without a gap.
func (iv Interval) StartsDirectlyBefore(other Interval, cmp compare.Comparator) bool {
	if cmp.Compare(iv.normEnd, other.normStart) >= 0 {
		return false
	}

	return cmp.Compare(iv.kind.Next(iv.normEnd), other.normStart) == 0
}

// EndsDirectlyBefore reports whether other ends at the value directly
// preceding iv's start.
func (iv Interval) EndsDirectlyBefore(other Interval, cmp compare.Comparator) bool {
	return other.StartsDirectlyBefore(iv, cmp)
}

// Includes reports whether other lies within iv, bounds included.
func (iv Interval) Includes(other Interval, cmp compare.Comparator) bool {
	return cmp.Compare(iv.normStart, other.normStart) <= 0 && cmp.Compare(other.normEnd, iv.normEnd) <= 0
}

// IsDuring reports whether iv lies within other, bounds included.
func (iv Interval) IsDuring(other Interval, cmp compare.Comparator) bool {
	return other.Includes(iv, cmp)
}
