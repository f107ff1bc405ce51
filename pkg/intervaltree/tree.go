// Package intervaltree implements an augmented AVL tree over numeric
// intervals.
//
// Every node owns one normalized range [start, end] and the collection of
// intervals sharing it. Nodes are ordered by start, then end, and carry the
// greatest end of their subtree so overlap queries can skip subtrees that end
// before the query begins. Node collections come from a pluggable factory and
// may be cached, persisted and observed outside the tree.
//
// A Tree is not safe for concurrent mutation. Read-only operations may run
// concurrently with each other but not with a mutation.
package intervaltree

import (
	"fmt"

	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

// Tree is an augmented interval tree.
type Tree struct {
	root *Node
	size int
	cfg  Configuration
}

func newTree(cfg Configuration) *Tree {
	return &Tree{cfg: cfg}
}

// Configuration returns the tree's strategies.
func (t *Tree) Configuration() Configuration { return t.cfg }

// Root returns the root node, nil for an empty tree.
func (t *Tree) Root() *Node { return t.root }

// Size returns the number of stored intervals.
func (t *Tree) Size() int { return t.size }

// IsEmpty reports whether the tree holds no interval.
func (t *Tree) IsEmpty() bool { return t.root == nil }

// Height returns the height of the root, 0 for an empty tree.
func (t *Tree) Height() int { return heightOf(t.root) }

// check reports whether iv can be ordered against the stored intervals.
func (t *Tree) check(iv interval.Interval) error {
	if !iv.Valid() {
		return fmt.Errorf("%w: zero interval", interval.ErrIllegalTimeInterval)
	}

	if t.cfg.kind.Valid() && iv.Kind() != t.cfg.kind {
		return fmt.Errorf("%w: tree of %s got %s", compare.ErrKindMismatch, t.cfg.kind, iv.Kind())
	}

	if t.root == nil {
		return nil
	}

	return t.cfg.comparator.Check(iv.Kind(), t.root.start.Kind())
}

// compareRange orders a normalized range against a node, start first.
func (t *Tree) compareRange(iv interval.Interval, n *Node) int {
	cmp := t.cfg.comparator

	if c := cmp.Compare(iv.NormStart(), n.start); c != 0 {
		return c
	}

	return cmp.Compare(iv.NormEnd(), n.end)
}

// locate returns the node holding the range of iv, or the node below which
// that range would be inserted together with the slot.
func (t *Tree) locate(iv interval.Interval) (match, parent *Node, s side) {
	for n := t.root; n != nil; {
		c := t.compareRange(iv, n)
		if c == 0 {
			return n, n.parent, s
		}

		parent = n

		if c < 0 {
			s, n = sideLeft, n.left
		} else {
			s, n = sideRight, n.right
		}
	}

	return nil, parent, s
}

// Insert adds iv and reports whether the tree changed. Whether an interval
// equal to a stored one is added again is up to the node collection.
func (t *Tree) Insert(iv interval.Interval) (bool, error) {
	if err := t.check(iv); err != nil {
		return false, err
	}

	match, parent, s := t.locate(iv)
	if match != nil {
		c, err := match.Collection()
		if err != nil {
			return false, err
		}

		if !c.Add(iv) {
			return false, nil
		}

		t.size++

		return true, nil
	}

	n := newNode(t, iv.NormStart(), iv.NormEnd(), iv.UniqueIdentifier())
	n.hold(t.cfg.factory.New())

	c, err := n.Collection()
	if err != nil {
		return false, err
	}

	if parent == nil {
		t.root = n
	} else {
		parent.setChild(s, n)
	}

	c.Add(iv)
	t.size++

	if t.cfg.autoBalancing {
		t.rebalanceFrom(parent)
	}

	return true, nil
}

// InsertAll inserts every interval and returns how many changed the tree. It
// stops at the first error.
func (t *Tree) InsertAll(ivs ...interval.Interval) (int, error) {
	added := 0

	for _, iv := range ivs {
		changed, err := t.Insert(iv)
		if err != nil {
			return added, err
		}

		if changed {
			added++
		}
	}

	return added, nil
}

// Remove deletes one occurrence of iv and reports whether it was stored. A
// node whose collection becomes empty is spliced out of the tree.
func (t *Tree) Remove(iv interval.Interval) (bool, error) {
	if err := t.check(iv); err != nil {
		return false, err
	}

	n, _, _ := t.locate(iv)
	if n == nil {
		return false, nil
	}

	c, err := n.Collection()
	if err != nil {
		return false, err
	}

	if !c.Remove(iv) {
		return false, nil
	}

	t.size--

	if c.Len() == 0 {
		t.splice(n)
	}

	return true, nil
}

// splice removes n from the graph and rebalances from the point of change up
// to the root.
func (t *Tree) splice(n *Node) {
	var action *Node

	switch {
	case n.IsLeaf():
		ctx := n.detach()
		action = ctx.parent

		if ctx.parent == nil {
			t.root = nil
		}
	case n.left == nil || n.right == nil:
		child := n.singleChild()
		ctx := n.detach()
		t.attach(ctx, child)

		action = ctx.parent
		if action == nil {
			action = child
		}
	default:
		action = t.spliceSuccessor(n)
	}

	t.rebalanceFrom(action)
}

// spliceSuccessor replaces n, which has two children, by its in-order
// successor and returns the lowest node whose subtree changed.
func (t *Tree) spliceSuccessor(n *Node) *Node {
	succ := leftmost(n.right)
	ctx := n.detach()

	if succ == ctx.right {
		// The successor keeps its own right subtree.
		succ.parent = nil
		t.attach(ctx, succ)
		succ.setChild(sideLeft, ctx.left)

		return succ
	}

	sctx := succ.detach()
	sctx.parent.setChild(sideLeft, sctx.right)

	t.attach(ctx, succ)
	succ.setChild(sideLeft, ctx.left)
	succ.setChild(sideRight, ctx.right)

	return sctx.parent
}

// attach puts c into the slot described by ctx, as the root when ctx has no
// parent.
func (t *Tree) attach(ctx nodeContext, c *Node) {
	if ctx.parent != nil {
		ctx.parent.setChild(ctx.side, c)

		return
	}

	t.root = c
	c.parent = nil
	c.setLevel(0)
}

func leftmost(n *Node) *Node {
	for n != nil && n.left != nil {
		n = n.left
	}

	return n
}

// Find returns the intervals stored at exactly the normalized range of q that
// match q under the configured filter.
func (t *Tree) Find(q interval.Interval) ([]interval.Interval, error) {
	return t.FindWith(q, t.cfg.filter)
}

// FindWith is Find with an explicit filter.
func (t *Tree) FindWith(q interval.Interval, filter interval.Filter) ([]interval.Interval, error) {
	if err := t.check(q); err != nil {
		return nil, err
	}

	n, _, _ := t.locate(q)
	if n == nil {
		return nil, nil
	}

	c, err := n.Collection()
	if err != nil {
		return nil, err
	}

	var found []interval.Interval

	for candidate := range c.All() {
		if filter.Match(t.cfg.comparator, candidate, q) {
			found = append(found, candidate)
		}
	}

	return found, nil
}

// Contains reports whether an interval equal to iv is stored.
func (t *Tree) Contains(iv interval.Interval) (bool, error) {
	if err := t.check(iv); err != nil {
		return false, err
	}

	n, _, _ := t.locate(iv)
	if n == nil {
		return false, nil
	}

	c, err := n.Collection()
	if err != nil {
		return false, err
	}

	return c.Contains(iv), nil
}

// Overlap returns every stored interval sharing at least one value with q,
// ordered by normalized range.
func (t *Tree) Overlap(q interval.Interval) ([]interval.Interval, error) {
	var found []interval.Interval

	err := t.OverlapFunc(q, func(iv interval.Interval) bool {
		found = append(found, iv)

		return true
	})

	return found, err
}

// OverlapFunc calls fn for every stored interval overlapping q until fn
// returns false.
func (t *Tree) OverlapFunc(q interval.Interval, fn func(interval.Interval) bool) error {
	if err := t.check(q); err != nil {
		return err
	}

	_, err := t.overlap(t.root, q, fn)

	return err
}

// overlap walks the subtree of n in order. The left subtree is skipped when
// its max ends before q starts; the right subtree is skipped when n already
// starts after q ends, since every start to the right is at least n's.
func (t *Tree) overlap(n *Node, q interval.Interval, fn func(interval.Interval) bool) (bool, error) {
	if n == nil {
		return true, nil
	}

	cmp := t.cfg.comparator

	if n.left != nil && cmp.Compare(n.left.max, q.NormStart()) >= 0 {
		if more, err := t.overlap(n.left, q, fn); !more || err != nil {
			return more, err
		}
	}

	startsInside := cmp.Compare(n.start, q.NormEnd()) <= 0
	if !startsInside {
		return true, nil
	}

	if cmp.Compare(n.end, q.NormStart()) >= 0 {
		c, err := n.Collection()
		if err != nil {
			return false, err
		}

		for iv := range c.All() {
			if !fn(iv) {
				return false, nil
			}
		}
	}

	return t.overlap(n.right, q, fn)
}

// Clear removes every interval. With an observing factory each node
// collection is cleared through its observer first, so persisted
// collections are dropped as well.
func (t *Tree) Clear() error {
	if t.cfg.factory.Observer() != nil {
		for n := range t.Nodes() {
			c, err := n.Collection()
			if err != nil {
				return err
			}

			c.Clear()
		}
	}

	t.root = nil
	t.size = 0

	return nil
}
