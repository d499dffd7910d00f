package bt

import "errors"

// Construction errors. All of them are programmer errors reported while a
// tree is being built; evaluation itself never fails.
var (
	// Structural

	ErrUnbalancedClose = errors.New("finish called with no open composite")
	ErrDuplicateRoot   = errors.New("tree already has a root")
	ErrEmptyTree       = errors.New("no node was attached")
	ErrInverterArity   = errors.New("inverter requires exactly one child")

	// Nodes

	ErrNilPredicate    = errors.New("predicate is nil")
	ErrNilNode         = errors.New("node is nil")
	ErrAlreadyAttached = errors.New("node already has a parent")

	// Builder

	ErrBuilderSealed = errors.New("builder already built its tree")
)
