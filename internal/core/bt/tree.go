package bt

import (
	"context"

	"github.com/zeusync/btree/internal/core/blackboard"
)

// Tree is a frozen behavior tree produced by a Builder.
//
// Every Evaluate is a full top-down traversal from the root. There is no
// resume cursor: when an Action reports Running, the conditions and siblings
// before it are evaluated again on the next tick.
type Tree struct {
	root Node
}

// Root returns the root node.
func (t *Tree) Root() Node { return t.root }

// Evaluate runs one tick of the tree. A TickContext missing its context or
// blackboard is completed as NewTickContext would.
func (t *Tree) Evaluate(tc TickContext) (Status, Node) {
	if tc.Ctx == nil || tc.BB == nil {
		tc = NewTickContext(tc.Ctx, tc.BB, tc.Tick)
	}
	return t.root.Evaluate(tc)
}

// Tick evaluates the tree once against bb.
func (t *Tree) Tick(ctx context.Context, bb blackboard.Blackboard) (Status, Node) {
	return t.Evaluate(NewTickContext(ctx, bb, 0))
}

// Walk visits every node depth-first in child order. fn receives the node
// and its depth (root is 0). Returning false skips the node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	walk(t.root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if b, ok := n.(Branch); ok {
		for _, ch := range b.Children() {
			walk(ch, depth+1, fn)
		}
	}
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	n := 0
	t.Walk(func(Node, int) bool { n++; return true })
	return n
}

// Kind names the node variant for diagnostics.
func Kind(n Node) string {
	switch n.(type) {
	case *Sequence:
		return "sequence"
	case *Selector:
		return "selector"
	case *Inverter:
		return "not"
	case *Condition:
		return "condition"
	case *Action:
		return "action"
	default:
		return "custom"
	}
}
