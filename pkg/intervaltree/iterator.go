package intervaltree

import (
	"iter"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

// NodeIterator walks nodes in order by following parent links. The tree
// must not be mutated while an iterator is in use.
type NodeIterator struct {
	next *Node
}

// NodeIterator returns an iterator positioned before the smallest node.
func (t *Tree) NodeIterator() *NodeIterator {
	return &NodeIterator{next: leftmost(t.root)}
}

// HasNext reports whether Next has another node to return.
func (it *NodeIterator) HasNext() bool { return it.next != nil }

// Next returns the next node, nil once the walk is over.
func (it *NodeIterator) Next() *Node {
	n := it.next
	if n != nil {
		it.next = successor(n)
	}

	return n
}

// successor returns the in-order successor of n: the leftmost node of its
// right subtree, or the first ancestor reached from a left child.
func successor(n *Node) *Node {
	if n.right != nil {
		return leftmost(n.right)
	}

	for p := n.parent; p != nil; n, p = p, p.parent {
		if p.left == n {
			return p
		}
	}

	return nil
}

// IntervalIterator flattens the node collections in node order. Use it like
// bufio.Scanner: call Next until it returns false, then check Err.
type IntervalIterator struct {
	nodes   *NodeIterator
	pending []interval.Interval
	current interval.Interval
	err     error
}

// IntervalIterator returns an iterator over every stored interval.
func (t *Tree) IntervalIterator() *IntervalIterator {
	return &IntervalIterator{nodes: t.NodeIterator()}
}

// Next advances to the next interval. It returns false at the end or when a
// node collection cannot be loaded.
func (it *IntervalIterator) Next() bool {
	for len(it.pending) == 0 {
		if it.err != nil || !it.nodes.HasNext() {
			return false
		}

		c, err := it.nodes.Next().Collection()
		if err != nil {
			it.err = err

			return false
		}

		it.pending = c.Values()
	}

	it.current, it.pending = it.pending[0], it.pending[1:]

	return true
}

// Interval returns the interval Next advanced to.
func (it *IntervalIterator) Interval() interval.Interval { return it.current }

// Err returns the load error that stopped the iteration, if any.
func (it *IntervalIterator) Err() error { return it.err }

// Nodes yields every node in order.
func (t *Tree) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for it := t.NodeIterator(); it.HasNext(); {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// All yields every interval in node order. A collection load failure is
// yielded once with a zero interval and ends the sequence.
func (t *Tree) All() iter.Seq2[interval.Interval, error] {
	return func(yield func(interval.Interval, error) bool) {
		it := t.IntervalIterator()

		for it.Next() {
			if !yield(it.Interval(), nil) {
				return
			}
		}

		if err := it.Err(); err != nil {
			yield(interval.Interval{}, err)
		}
	}
}

// Intervals collects every interval in node order.
func (t *Tree) Intervals() ([]interval.Interval, error) {
	out := make([]interval.Interval, 0, t.size)

	for iv, err := range t.All() {
		if err != nil {
			return nil, err
		}

		out = append(out, iv)
	}

	return out, nil
}

// NodeCount returns the number of nodes, that is of distinct normalized ranges.
func (t *Tree) NodeCount() int {
	count := 0

	for range t.Nodes() {
		count++
	}

	return count
}
