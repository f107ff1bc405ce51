package intervaltree

import (
	"fmt"
	"weak"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// side names a child slot.
type side uint8

const (
	sideLeft side = iota
	sideRight
)

// Node is a tree vertex owning one normalized range and the collection of
// intervals that share it. Rotations relink nodes but never move their
// contents, so a *Node stays valid for its range until it is removed.
type Node struct {
	tree *Tree

	start numeric.Value
	end   numeric.Value
	key   string

	// max is the greatest end in the subtree rooted here.
	max    numeric.Value
	height int
	level  int

	parent *Node
	left   *Node
	right  *Node

	ref collectionRef
}

// collectionRef is the node's hold on its collection: strong, weak, or
// unresolved until the first access loads it through the factory.
type collectionRef struct {
	strong collection.Collection
	weak   weak.Pointer[collection.Cell]
	isWeak bool
}

// nodeContext is the neighbourhood of a node captured by detach.
type nodeContext struct {
	parent *Node
	left   *Node
	right  *Node
	side   side
}

func newNode(t *Tree, start, end numeric.Value, key string) *Node {
	return &Node{
		tree:   t,
		start:  start,
		end:    end,
		key:    key,
		max:    end,
		height: 1,
	}
}

// Start returns the normalized start shared by every interval in the node.
func (n *Node) Start() numeric.Value { return n.start }

// End returns the normalized end shared by every interval in the node.
func (n *Node) End() numeric.Value { return n.end }

// Max returns the greatest normalized end in the node's subtree.
func (n *Node) Max() numeric.Value { return n.max }

// Height is 1 for a leaf.
func (n *Node) Height() int { return n.height }

// Level is 0 for the root.
func (n *Node) Level() int { return n.level }

// Key returns the unique identifier of the node's range.
func (n *Node) Key() string { return n.key }

func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Left() *Node { return n.left }
func (n *Node) Right() *Node { return n.right }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.left == nil && n.right == nil }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Collection returns the node's collection, loading it through the factory
// when it was never resolved or its weak reference was reclaimed. With an
// observing factory the collection reports its mutations under Key.
func (n *Node) Collection() (collection.Collection, error) {
	c, err := n.resolve()
	if err != nil {
		return nil, err
	}

	if obs := n.tree.cfg.factory.Observer(); obs != nil {
		return collection.Observe(c, n.key, obs), nil
	}

	return c, nil
}

func (n *Node) resolve() (collection.Collection, error) {
	if n.ref.isWeak {
		if cell := n.ref.weak.Value(); cell != nil {
			return cell, nil
		}
	} else if n.ref.strong != nil {
		return n.ref.strong, nil
	}

	c, err := n.tree.cfg.factory.Load(n.key)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", n.key, err)
	}

	n.hold(c)

	return c, nil
}

// hold stores c weakly when the factory asks for it and c can be pointed at
// weakly, strongly otherwise.
func (n *Node) hold(c collection.Collection) {
	if n.tree.cfg.factory.UseWeakReferences() {
		if cell, ok := c.(*collection.Cell); ok {
			n.ref = collectionRef{weak: weak.Make(cell), isWeak: true}

			return
		}
	}

	n.ref = collectionRef{strong: c}
}

// child returns the child in slot s.
func (n *Node) child(s side) *Node {
	if s == sideLeft {
		return n.left
	}

	return n.right
}

// sideOf returns the slot of n in its parent. It panics for the root.
func (n *Node) sideOf() side {
	switch {
	case n.parent == nil:
		panic(fmt.Errorf("%w: root %s has no side", ErrIllegalStructure, n.key))
	case n.parent.left == n:
		return sideLeft
	case n.parent.right == n:
		return sideRight
	default:
		panic(fmt.Errorf("%w: %s is not a child of its parent %s", ErrIllegalStructure, n.key, n.parent.key))
	}
}

// singleChild returns the only child of a node with exactly one child.
func (n *Node) singleChild() *Node {
	switch {
	case n.left != nil && n.right == nil:
		return n.left
	case n.left == nil && n.right != nil:
		return n.right
	default:
		panic(fmt.Errorf("%w: %s does not have exactly one child", ErrIllegalStructure, n.key))
	}
}

// balance is height(left) - height(right).
func (n *Node) balance() int {
	return heightOf(n.left) - heightOf(n.right)
}

func heightOf(n *Node) int {
	if n == nil {
		return 0
	}

	return n.height
}

// detach unlinks n from its parent and children and resets its derived
// state. The returned context lets the caller reattach a new arrangement.
// The former children keep pointing at n until they are relinked.
func (n *Node) detach() nodeContext {
	ctx := nodeContext{parent: n.parent, left: n.left, right: n.right}

	if n.parent != nil {
		ctx.side = n.sideOf()
		n.parent.link(ctx.side, nil)
	}

	n.parent, n.left, n.right = nil, nil, nil
	n.max = n.end
	n.height = 1
	n.level = 0

	return ctx
}

// link sets slot s to c and c's parent to n without touching derived state.
func (n *Node) link(s side, c *Node) {
	if s == sideLeft {
		n.left = c
	} else {
		n.right = c
	}

	if c != nil {
		c.parent = n
	}
}

// setChild links c into slot s, corrects the levels below n and propagates
// the new max and height upward until an ancestor is unchanged.
func (n *Node) setChild(s side, c *Node) {
	n.link(s, c)

	if c != nil {
		c.setLevel(n.level + 1)
	}

	for p := n; p != nil; p = p.parent {
		if !p.update() {
			break
		}
	}
}

// setLevel assigns level l to n and its descendants. A subtree whose root
// already has the right level is left alone.
func (n *Node) setLevel(l int) {
	if n.level == l {
		return
	}

	n.level = l

	if n.left != nil {
		n.left.setLevel(l + 1)
	}

	if n.right != nil {
		n.right.setLevel(l + 1)
	}
}

// update recomputes max and height from the children and reports whether
// either changed.
func (n *Node) update() bool {
	cmp := n.tree.cfg.comparator

	maxEnd := n.end
	if n.left != nil {
		maxEnd = compare.Max(cmp, maxEnd, n.left.max)
	}

	if n.right != nil {
		maxEnd = compare.Max(cmp, maxEnd, n.right.max)
	}

	height := 1 + max(heightOf(n.left), heightOf(n.right))

	changed := height != n.height || cmp.Compare(maxEnd, n.max) != 0
	n.max, n.height = maxEnd, height

	return changed
}
