package bt

import (
	"fmt"
)

// Builder assembles a Tree from a flat sequence of calls. Opening a
// composite (Sequence, Selector, Not) makes it the current parent until the
// matching Finish; leaves and appended subtrees attach to the current parent.
//
//	tree, err := bt.NewBuilder().
//		Selector("root").
//			Sequence("fight").
//				Condition("enemy visible", enemyVisible).
//				Action("attack", attack).
//			Finish().
//			Action("patrol", patrol).
//		Finish().
//		Build()
//
// The first error sticks: later calls do nothing and Build returns it.
type Builder struct {
	stack  []Branch
	root   Node
	err    error
	calls  int
	sealed *Tree
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Sequence opens a Sequence under the current parent.
func (b *Builder) Sequence(name string) *Builder {
	return b.open("sequence", NewSequence(name))
}

// Selector opens a Selector under the current parent.
func (b *Builder) Selector(name string) *Builder {
	return b.open("selector", NewSelector(name))
}

// Not opens an Inverter named "Not" under the current parent.
func (b *Builder) Not() *Builder {
	return b.Inverter("Not")
}

// Inverter opens a named Inverter under the current parent. It must receive
// exactly one child before it is closed.
func (b *Builder) Inverter(name string) *Builder {
	return b.open("not", NewInverter(name))
}

// Condition attaches a new Condition leaf to the current parent.
func (b *Builder) Condition(name string, pred Predicate) *Builder {
	if !b.begin("condition", name) {
		return b
	}
	c, err := NewCondition(name, pred)
	if err != nil {
		return b.fail("condition", name, err)
	}
	return b.attach("condition", c)
}

// Action attaches a new Action leaf to the current parent.
func (b *Builder) Action(name string, pred Predicate) *Builder {
	if !b.begin("action", name) {
		return b
	}
	a, err := NewAction(name, pred)
	if err != nil {
		return b.fail("action", name, err)
	}
	return b.attach("action", a)
}

// ConditionNode attaches a pre-built Condition to the current parent.
func (b *Builder) ConditionNode(c *Condition) *Builder {
	if c == nil {
		return b.AppendTree(nil)
	}
	return b.AppendTree(c)
}

// ActionNode attaches a pre-built Action to the current parent.
func (b *Builder) ActionNode(a *Action) *Builder {
	if a == nil {
		return b.AppendTree(nil)
	}
	return b.AppendTree(a)
}

// AppendTree attaches an existing node to the current parent without opening
// it, even when it is a composite.
func (b *Builder) AppendTree(n Node) *Builder {
	name := ""
	if n != nil {
		name = n.Name()
	}
	if !b.begin("append", name) {
		return b
	}
	if n == nil {
		return b.fail("append", name, ErrNilNode)
	}
	return b.attach("append", n)
}

// Finish closes the most recently opened composite.
func (b *Builder) Finish() *Builder {
	if !b.begin("finish", "") {
		return b
	}
	if len(b.stack) == 0 {
		return b.fail("finish", "", ErrUnbalancedClose)
	}
	top := b.stack[len(b.stack)-1]
	if inv, ok := top.(*Inverter); ok && len(inv.children) != 1 {
		return b.fail("finish", top.Name(), ErrInverterArity)
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b
}

// Build returns the tree. Composites still open are closed implicitly.
// Calling Build again returns the same tree, even after a call rejected
// because the builder was sealed.
func (b *Builder) Build() (*Tree, error) {
	if b.sealed != nil {
		return b.sealed, nil
	}
	if b.err != nil {
		return nil, b.err
	}
	b.calls++
	if b.root == nil {
		b.fail("build", "", ErrEmptyTree)
		return nil, b.err
	}
	for _, open := range b.stack {
		if inv, ok := open.(*Inverter); ok && len(inv.children) != 1 {
			b.fail("build", open.Name(), ErrInverterArity)
			return nil, b.err
		}
	}
	b.stack = nil
	b.sealed = &Tree{root: b.root}
	return b.sealed, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Tree {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// Err returns the first error recorded by the builder.
func (b *Builder) Err() error { return b.err }

// Depth returns the number of composites currently open.
func (b *Builder) Depth() int { return len(b.stack) }

func (b *Builder) open(op string, br Branch) *Builder {
	if !b.begin(op, br.Name()) {
		return b
	}
	b.attach(op, br)
	if b.err == nil {
		b.stack = append(b.stack, br)
	}
	return b
}

// begin counts the call and reports whether the builder may proceed.
func (b *Builder) begin(op, name string) bool {
	if b.err != nil {
		return false
	}
	b.calls++
	if b.sealed != nil {
		b.fail(op, name, ErrBuilderSealed)
		return false
	}
	return true
}

// attach implements the attach rule: child of the open composite, else the
// root, else an error.
func (b *Builder) attach(op string, n Node) *Builder {
	c, owned := n.(claimer)
	if len(b.stack) == 0 {
		if b.root != nil {
			return b.fail(op, n.Name(), ErrDuplicateRoot)
		}
		if owned && c.isAttached() {
			return b.fail(op, n.Name(), ErrAlreadyAttached)
		}
		b.root = n
		return b
	}
	if owned && !c.claim() {
		return b.fail(op, n.Name(), ErrAlreadyAttached)
	}
	if err := b.stack[len(b.stack)-1].addChild(n); err != nil {
		if owned {
			c.release()
		}
		return b.fail(op, n.Name(), err)
	}
	return b
}

func (b *Builder) fail(op, name string, err error) *Builder {
	if name != "" {
		b.err = fmt.Errorf("bt: %s %q (call %d): %w", op, name, b.calls, err)
	} else {
		b.err = fmt.Errorf("bt: %s (call %d): %w", op, b.calls, err)
	}
	return b
}
