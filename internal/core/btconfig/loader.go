package btconfig

import (
	"fmt"

	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

// Loader turns definitions into trees by replaying them through bt.Builder.
type Loader struct {
	registry *Registry
	logger   log.Log
}

// NewLoader returns a loader resolving `use:` leaves against registry.
// A nil logger discards output.
func NewLoader(registry *Registry, logger log.Log) *Loader {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Loader{registry: registry, logger: logger}
}

// Registry returns the registry leaves are resolved against.
func (l *Loader) Registry() *Registry { return l.registry }

// LoadFile reads, validates and builds the definition at path.
func (l *Loader) LoadFile(path string) (*bt.Tree, error) {
	def, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Build(def)
}

// Build constructs a tree from def. Every reference to a subtree builds
// a fresh copy of it, so subtrees may be used any number of times.
func (l *Loader) Build(def *Definition) (*bt.Tree, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	c := &compiler{loader: l, def: def, active: make(map[string]bool)}
	b := bt.NewBuilder()
	if err := c.emit(b, def.Root, "root"); err != nil {
		return nil, err
	}
	tree, err := b.Build()
	if err != nil {
		return nil, err
	}
	l.logger.Debug("tree loaded",
		log.String("tree", def.Name),
		log.Int("nodes", tree.Size()),
	)
	return tree, nil
}

type compiler struct {
	loader *Loader
	def    *Definition
	active map[string]bool
}

func (c *compiler) emit(b *bt.Builder, n *NodeDef, path string) error {
	name := n.DisplayName()
	switch n.kind() {
	case KindSequence, KindSelector, KindNot:
		switch n.kind() {
		case KindSequence:
			b.Sequence(name)
		case KindSelector:
			b.Selector(name)
		default:
			b.Inverter(name)
		}
		if err := b.Err(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for i, ch := range n.Children {
			if err := c.emit(b, ch, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
				return err
			}
		}
		b.Finish()
	case KindCondition, KindAction:
		pred, err := c.predicate(n)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if n.kind() == KindCondition {
			b.Condition(name, pred)
		} else {
			b.Action(name, pred)
		}
	case KindTree:
		sub, err := c.subtree(n.Ref, path)
		if err != nil {
			return err
		}
		b.AppendTree(sub.Root())
	default:
		return fmt.Errorf("%s: %w: %q", path, ErrUnknownNodeType, n.Type)
	}
	if err := b.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *compiler) predicate(n *NodeDef) (bt.Predicate, error) {
	if n.Expr != "" {
		return CompileExpr(n.Expr, c.loader.logger)
	}
	if n.kind() == KindCondition {
		return c.loader.registry.NewCondition(n.Use, n.Params)
	}
	return c.loader.registry.NewAction(n.Use, n.Params)
}

func (c *compiler) subtree(ref, path string) (*bt.Tree, error) {
	if c.active[ref] {
		return nil, fmt.Errorf("%s: %w: %q", path, ErrSubtreeCycle, ref)
	}
	c.active[ref] = true
	defer delete(c.active, ref)

	b := bt.NewBuilder()
	if err := c.emit(b, c.def.Subtrees[ref], "subtrees."+ref); err != nil {
		return nil, err
	}
	tree, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("subtrees.%s: %w", ref, err)
	}
	return tree, nil
}
