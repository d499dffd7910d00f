package btconfig

import "errors"

var (
	ErrInvalidDefinition = errors.New("invalid tree definition")
	ErrUnknownNodeType   = errors.New("unknown node type")
	ErrUnknownSubtree    = errors.New("unknown subtree")
	ErrSubtreeCycle      = errors.New("subtree references itself")
	ErrUnknownCondition  = errors.New("unknown condition")
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidParams     = errors.New("invalid params")
	ErrInvalidExpr       = errors.New("invalid expression")
)
