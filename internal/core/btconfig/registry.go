package btconfig

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/zeusync/btree/internal/core/bt"
)

// Params are the free-form leaf parameters from a definition.
type Params map[string]any

// Decode copies the params into out (a pointer to a struct tagged with
// `mapstructure`). Unknown keys are rejected.
func (p Params) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(p)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// Factory turns params into a leaf predicate.
type Factory func(p Params) (bt.Predicate, error)

// Registry maps the `use:` names of a definition to predicate factories.
type Registry struct {
	mu         sync.RWMutex
	conditions map[string]Factory
	actions    map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conditions: make(map[string]Factory),
		actions:    make(map[string]Factory),
	}
}

func (r *Registry) RegisterCondition(name string, f Factory) {
	r.mu.Lock()
	r.conditions[name] = f
	r.mu.Unlock()
}

func (r *Registry) RegisterAction(name string, f Factory) {
	r.mu.Lock()
	r.actions[name] = f
	r.mu.Unlock()
}

// NewCondition builds the predicate registered as a condition under name.
func (r *Registry) NewCondition(name string, p Params) (bt.Predicate, error) {
	r.mu.RLock()
	f := r.conditions[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCondition, name)
	}
	return f(p)
}

// NewAction builds the predicate registered as an action under name.
func (r *Registry) NewAction(name string, p Params) (bt.Predicate, error) {
	r.mu.RLock()
	f := r.actions[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return f(p)
}

// Conditions returns the registered condition names, sorted.
func (r *Registry) Conditions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.conditions)
}

// Actions returns the registered action names, sorted.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.actions)
}

func sortedKeys(m map[string]Factory) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
