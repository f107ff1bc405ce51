package intervaltree

import "fmt"

// rebalanceFrom walks from n to the root, refreshing max and height on every
// node and, with autobalancing on, rotating each node back into balance.
func (t *Tree) rebalanceFrom(n *Node) {
	for n != nil {
		n.update()

		if t.cfg.autoBalancing {
			n = t.rebalance(n)
		}

		n = n.parent
	}
}

// rebalance restores the AVL condition at n and returns the root of the
// resulting subtree.
func (t *Tree) rebalance(n *Node) *Node {
	b := n.balance()

	switch {
	case b > 1 && n.left.balance() >= 0:
		return t.rotateRight(n)
	case b < -1 && n.right.balance() <= 0:
		return t.rotateLeft(n)
	case b > 1:
		t.rotateLeft(n.left)

		return t.rotateRight(n)
	case b < -1:
		t.rotateRight(n.right)

		return t.rotateLeft(n)
	default:
		return n
	}
}

// rotateLeft lifts the right child r of n into n's slot. n becomes r's left
// child and adopts r's former left subtree as its right one.
func (t *Tree) rotateLeft(n *Node) *Node {
	r := n.right
	if r == nil {
		panic(illegalRotation(n, "left"))
	}

	t.replace(n, r)
	n.link(sideRight, r.left)
	r.link(sideLeft, n)

	t.settle(n, r)

	return r
}

// rotateRight is the mirror of rotateLeft.
func (t *Tree) rotateRight(n *Node) *Node {
	l := n.left
	if l == nil {
		panic(illegalRotation(n, "right"))
	}

	t.replace(n, l)
	n.link(sideLeft, l.right)
	l.link(sideRight, n)

	t.settle(n, l)

	return l
}

// replace puts c into the slot n occupies, leaving n's links untouched.
func (t *Tree) replace(n, c *Node) {
	p := n.parent
	if p == nil {
		t.root = c
		c.parent = nil

		return
	}

	p.link(n.sideOf(), c)
}

// settle recomputes the two rotated nodes, child before parent, and the
// levels of the rotated subtree.
func (t *Tree) settle(child, top *Node) {
	child.update()
	top.update()

	level := 0
	if top.parent != nil {
		level = top.parent.level + 1
	}

	// The rotated nodes swap levels, force the whole subtree to be revisited.
	top.level = -1
	top.setLevel(level)
}

// Balance rebuilds the tree into a height-balanced shape. Node identity is
// preserved. It is needed only when autobalancing was off during mutation.
func (t *Tree) Balance() {
	nodes := make([]*Node, 0, t.NodeCount())
	for n := range t.Nodes() {
		nodes = append(nodes, n)
	}

	for _, n := range nodes {
		n.parent, n.left, n.right = nil, nil, nil
	}

	t.root = t.build(nodes, 0)
	if t.root != nil {
		t.root.parent = nil
	}
}

// build links the sorted nodes into a balanced subtree at the given level.
func (t *Tree) build(nodes []*Node, level int) *Node {
	if len(nodes) == 0 {
		return nil
	}

	mid := len(nodes) / 2
	n := nodes[mid]
	n.level = level

	n.link(sideLeft, t.build(nodes[:mid], level+1))
	n.link(sideRight, t.build(nodes[mid+1:], level+1))
	n.update()

	return n
}

func illegalRotation(n *Node, direction string) error {
	return fmt.Errorf("%w: cannot rotate %s %s without the lifted child", ErrIllegalStructure, n.key, direction)
}
