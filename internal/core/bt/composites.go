package bt

// Composite nodes: Sequence, Selector, Inverter.
// Children are evaluated left to right on every call; nothing is remembered
// between ticks.

type branch struct {
	baseNode
	children []Node
}

func (b *branch) Children() []Node {
	out := make([]Node, len(b.children))
	copy(out, b.children)
	return out
}

func (b *branch) addChild(child Node) error {
	b.children = append(b.children, child)
	return nil
}

// Sequence succeeds when every child succeeds. The first Failed or Running
// child short-circuits.
type Sequence struct{ branch }

func NewSequence(name string) *Sequence {
	return &Sequence{branch{baseNode: baseNode{name: name}}}
}

func (s *Sequence) Evaluate(t TickContext) (Status, Node) {
	for _, ch := range s.children {
		st, active := ch.Evaluate(t)
		switch st {
		case StatusFailed:
			return s.record(StatusFailed), s
		case StatusRunning:
			return s.record(StatusRunning), active
		}
	}
	return s.record(StatusSucceeded), s
}

// Selector returns the first Succeeded or Running child outcome, forwarding
// that child's active node, and fails when every child fails.
type Selector struct{ branch }

func NewSelector(name string) *Selector {
	return &Selector{branch{baseNode: baseNode{name: name}}}
}

func (s *Selector) Evaluate(t TickContext) (Status, Node) {
	for _, ch := range s.children {
		st, active := ch.Evaluate(t)
		switch st {
		case StatusSucceeded:
			return s.record(StatusSucceeded), active
		case StatusRunning:
			return s.record(StatusRunning), active
		}
	}
	return s.record(StatusFailed), s
}

// Inverter flips Succeeded and Failed of its single child; Running passes
// through with the child's active node.
type Inverter struct{ branch }

func NewInverter(name string) *Inverter {
	return &Inverter{branch{baseNode: baseNode{name: name}}}
}

func (n *Inverter) addChild(child Node) error {
	if len(n.children) > 0 {
		return ErrInverterArity
	}
	n.children = append(n.children, child)
	return nil
}

func (n *Inverter) Evaluate(t TickContext) (Status, Node) {
	if len(n.children) == 0 {
		return n.record(StatusFailed), n
	}
	st, active := n.children[0].Evaluate(t)
	switch st {
	case StatusSucceeded:
		return n.record(StatusFailed), n
	case StatusFailed:
		return n.record(StatusSucceeded), n
	default:
		return n.record(st), active
	}
}
