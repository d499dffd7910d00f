package btconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node kinds accepted in a definition.
const (
	KindSequence  = "sequence"
	KindSelector  = "selector"
	KindNot       = "not"
	KindCondition = "condition"
	KindAction    = "action"
	KindTree      = "tree"
)

// Definition describes a tree declaratively. It is an input format only:
// built trees are never written back.
type Definition struct {
	Name     string              `json:"name" yaml:"name"`
	Root     *NodeDef            `json:"root" yaml:"root"`
	Subtrees map[string]*NodeDef `json:"subtrees,omitempty" yaml:"subtrees,omitempty"`
}

// NodeDef describes one node. Composites use Children; leaves use either
// Expr or Use (+ Params); a "tree" node references a named subtree.
type NodeDef struct {
	Type     string         `json:"type" yaml:"type"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Children []*NodeDef     `json:"children,omitempty" yaml:"children,omitempty"`
	Expr     string         `json:"expr,omitempty" yaml:"expr,omitempty"`
	Use      string         `json:"use,omitempty" yaml:"use,omitempty"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Ref      string         `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// kind normalizes Type; "inverter" is accepted as an alias of "not".
func (n *NodeDef) kind() string {
	k := strings.ToLower(strings.TrimSpace(n.Type))
	if k == "inverter" {
		return KindNot
	}
	return k
}

// DisplayName is the node name used in the built tree.
func (n *NodeDef) DisplayName() string {
	switch {
	case n.Name != "":
		return n.Name
	case n.Use != "":
		return n.Use
	case n.Expr != "":
		return n.Expr
	case n.Ref != "":
		return n.Ref
	default:
		return n.kind()
	}
}

// LoadJSON decodes a definition from JSON.
func LoadJSON(r io.Reader) (*Definition, error) {
	var d Definition
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode json definition: %w", err)
	}
	return &d, d.Validate()
}

// LoadYAML decodes a definition from YAML.
func LoadYAML(r io.Reader) (*Definition, error) {
	var d Definition
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode yaml definition: %w", err)
	}
	return &d, d.Validate()
}

// LoadFile picks the decoder from the file extension (.json, else YAML).
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var d *Definition
	if strings.EqualFold(filepath.Ext(path), ".json") {
		d, err = LoadJSON(f)
	} else {
		d, err = LoadYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Validate checks the definition shape without resolving predicates.
func (d *Definition) Validate() error {
	if d.Root == nil {
		return fmt.Errorf("%w: root is required", ErrInvalidDefinition)
	}
	if err := d.validateNode(d.Root, "root"); err != nil {
		return err
	}
	for name, sub := range d.Subtrees {
		if sub == nil {
			return fmt.Errorf("%w: subtrees.%s is empty", ErrInvalidDefinition, name)
		}
		if err := d.validateNode(sub, "subtrees."+name); err != nil {
			return err
		}
	}
	return nil
}

func (d *Definition) validateNode(n *NodeDef, path string) error {
	if n == nil {
		return fmt.Errorf("%w: %s is empty", ErrInvalidDefinition, path)
	}
	switch n.kind() {
	case KindSequence, KindSelector, KindNot:
		if n.Expr != "" || n.Use != "" || n.Ref != "" {
			return fmt.Errorf("%w: %s: composite %q takes children only", ErrInvalidDefinition, path, n.Type)
		}
		for i, ch := range n.Children {
			if err := d.validateNode(ch, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
				return err
			}
		}
	case KindCondition, KindAction:
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: %s: leaf cannot have children", ErrInvalidDefinition, path)
		}
		if (n.Expr == "") == (n.Use == "") {
			return fmt.Errorf("%w: %s: leaf needs exactly one of expr or use", ErrInvalidDefinition, path)
		}
	case KindTree:
		if n.Ref == "" {
			return fmt.Errorf("%w: %s: tree node needs ref", ErrInvalidDefinition, path)
		}
		if _, ok := d.Subtrees[n.Ref]; !ok {
			return fmt.Errorf("%w: %s: %q", ErrUnknownSubtree, path, n.Ref)
		}
	default:
		return fmt.Errorf("%w: %s: %q", ErrUnknownNodeType, path, n.Type)
	}
	return nil
}
