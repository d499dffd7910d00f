package bt

// Predicate is the host-supplied logic behind a leaf.
type Predicate func(t TickContext) bool

// Fixed returns a predicate that always reports v.
func Fixed(v bool) Predicate {
	return func(TickContext) bool { return v }
}

// Condition is an instantaneous check: Succeeded when the predicate holds,
// Failed otherwise. It never returns Running.
type Condition struct {
	baseNode
	pred Predicate
}

// NewCondition wraps pred as a Condition leaf.
func NewCondition(name string, pred Predicate) (*Condition, error) {
	if pred == nil {
		return nil, ErrNilPredicate
	}
	return &Condition{baseNode: baseNode{name: name}, pred: pred}, nil
}

func (c *Condition) Evaluate(t TickContext) (Status, Node) {
	if c.pred(t) {
		return c.record(StatusSucceeded), c
	}
	return c.record(StatusFailed), c
}

// Action reports whether work was started or is continuing: Running when the
// predicate holds, Failed otherwise. It never returns Succeeded; completion
// has to be observed by a later Condition.
type Action struct {
	baseNode
	pred Predicate
}

// NewAction wraps pred as an Action leaf.
func NewAction(name string, pred Predicate) (*Action, error) {
	if pred == nil {
		return nil, ErrNilPredicate
	}
	return &Action{baseNode: baseNode{name: name}, pred: pred}, nil
}

func (a *Action) Evaluate(t TickContext) (Status, Node) {
	if a.pred(t) {
		return a.record(StatusRunning), a
	}
	return a.record(StatusFailed), a
}
