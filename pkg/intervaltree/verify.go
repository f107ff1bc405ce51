package intervaltree

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
)

// Stats summarizes the shape of a tree.
type Stats struct {
	Intervals int
	Nodes     int
	Leaves    int
	Height    int
	// MaxImbalance is the largest |height(left) - height(right)| of any node.
	MaxImbalance int
	// AvgDepth is the mean node level.
	AvgDepth float64
}

// Stats walks the nodes without loading any collection.
func (t *Tree) Stats() Stats {
	s := Stats{Intervals: t.size, Height: t.Height()}

	levels := 0

	for n := range t.Nodes() {
		s.Nodes++
		levels += n.level

		if n.IsLeaf() {
			s.Leaves++
		}

		s.MaxImbalance = max(s.MaxImbalance, abs(n.balance()))
	}

	if s.Nodes > 0 {
		s.AvgDepth = float64(levels) / float64(s.Nodes)
	}

	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

// Verify checks every structural invariant: parent links, levels, strict
// range order, height, max, non-empty collections, the interval count and,
// with autobalancing on, the AVL balance. Violations are joined into one
// ErrIllegalStructure error.
func (t *Tree) Verify() error {
	if t.root != nil && t.root.parent != nil {
		return fmt.Errorf("%w: root %s has a parent", ErrIllegalStructure, t.root.key)
	}

	var (
		problems []error
		prev     *Node
		count    int
	)

	cmp := t.cfg.comparator

	fail := func(n *Node, format string, args ...any) {
		problems = append(problems, fmt.Errorf("%w: node %s: %s", ErrIllegalStructure, n.key, fmt.Sprintf(format, args...)))
	}

	for n := range t.Nodes() {
		t.verifyLinks(n, fail)

		if prev != nil && !ordered(cmp, prev, n) {
			fail(n, "not ordered after %s", prev.key)
		}

		prev = n

		want := *n
		want.update()

		if want.height != n.height {
			fail(n, "height %d, want %d", n.height, want.height)
		}

		if cmp.Compare(want.max, n.max) != 0 {
			fail(n, "max %s, want %s", n.max, want.max)
		}

		if t.cfg.autoBalancing && abs(n.balance()) > 1 {
			fail(n, "balance %d", n.balance())
		}

		c, err := n.Collection()
		if err != nil {
			problems = append(problems, err)

			continue
		}

		if c.Len() == 0 {
			fail(n, "empty collection")
		}

		count += c.Len()
	}

	if count != t.size {
		problems = append(problems, fmt.Errorf("%w: size %d, counted %d", ErrIllegalStructure, t.size, count))
	}

	return errors.Join(problems...)
}

func (t *Tree) verifyLinks(n *Node, fail func(*Node, string, ...any)) {
	wantLevel := 0
	if n.parent != nil {
		wantLevel = n.parent.level + 1

		if n.parent.left != n && n.parent.right != n {
			fail(n, "parent %s does not link back", n.parent.key)
		}
	}

	if n.level != wantLevel {
		fail(n, "level %d, want %d", n.level, wantLevel)
	}

	for _, c := range []*Node{n.left, n.right} {
		if c != nil && c.parent != n {
			fail(n, "child %s has another parent", c.key)
		}
	}
}

// ordered reports whether a's range sorts strictly before b's.
func ordered(cmp compare.Comparator, a, b *Node) bool {
	if c := cmp.Compare(a.start, b.start); c != 0 {
		return c < 0
	}

	return cmp.Compare(a.end, b.end) < 0
}
