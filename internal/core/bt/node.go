package bt

import (
	"context"
	"sync/atomic"

	"github.com/zeusync/btree/internal/core/blackboard"
)

// Status is the outcome of evaluating a node.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	case StatusRunning:
		return "Running"
	default:
		return "Invalid"
	}
}

// TickContext is passed to every node during one evaluation.
type TickContext struct {
	Ctx context.Context
	BB  blackboard.Blackboard
	// Tick is the caller's cycle counter; informational only.
	Tick uint64
}

// NewTickContext returns a context for one evaluation. A nil blackboard is
// replaced with an empty one so leaves never see nil.
func NewTickContext(ctx context.Context, bb blackboard.Blackboard, tick uint64) TickContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if bb == nil {
		bb = blackboard.New()
	}
	return TickContext{Ctx: ctx, BB: bb, Tick: tick}
}

// Node is a single node of a behavior tree.
//
// Evaluate returns the node's outcome and the active node: the node
// responsible for a StatusRunning outcome. The active node is only
// meaningful when the status is StatusRunning.
type Node interface {
	Evaluate(t TickContext) (Status, Node)
	Name() string
}

// Branch is a node that owns an ordered list of children.
type Branch interface {
	Node
	Children() []Node
	addChild(child Node) error
}

// baseNode carries the name, the advisory last-outcome cache and the
// ownership mark shared by every built-in node.
type baseNode struct {
	name string
	// last holds Status+1; zero means never evaluated.
	last     atomic.Int32
	attached atomic.Bool
}

func (b *baseNode) Name() string { return b.name }

// LastStatus returns the outcome of the most recent evaluation, if any.
func (b *baseNode) LastStatus() (Status, bool) {
	v := b.last.Load()
	if v == 0 {
		return 0, false
	}
	return Status(v - 1), true
}

func (b *baseNode) record(s Status) Status {
	b.last.Store(int32(s) + 1)
	return s
}

// claim marks the node as owned by a parent. It reports false if the node
// already had one.
func (b *baseNode) claim() bool {
	return b.attached.CompareAndSwap(false, true)
}

func (b *baseNode) release() { b.attached.Store(false) }

func (b *baseNode) isAttached() bool { return b.attached.Load() }

type claimer interface {
	claim() bool
	release()
	isAttached() bool
}
