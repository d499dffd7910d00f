package blackboard

import (
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultShardCount = 16

// Blackboard is the shared key/value store leaves use to communicate across
// the tree and across ticks. Values are untyped; use Lookup for typed reads.
type Blackboard interface {
	// Get retrieves a value by key. Returns (nil, false) if absent.
	Get(key string) (any, bool)
	// Set creates or replaces the value stored under key.
	Set(key string, value any)
	// Delete removes a value by key.
	Delete(key string)
	// Has reports whether key is present.
	Has(key string) bool
	// Keys returns a sorted snapshot of the keys visible through this view.
	Keys() []string
	// Len returns the number of keys visible through this view.
	Len() int
	// Clear removes every key visible through this view.
	Clear()
	// Snapshot copies the visible entries into a plain map.
	Snapshot() map[string]any
	// Namespace returns a view whose keys are stored as "ns:key".
	Namespace(ns string) Blackboard
}

type shard struct {
	mu   sync.RWMutex
	data map[string]any
}

// store holds the shards; views share one store.
type store struct {
	shards []*shard
}

func (s *store) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// view is a (possibly namespaced) window onto a store.
type view struct {
	st     *store
	prefix string
}

var _ Blackboard = (*view)(nil)

// New creates an empty root blackboard with the default shard count.
func New() Blackboard {
	return NewSharded(defaultShardCount)
}

// NewSharded creates an empty root blackboard with n lock shards.
func NewSharded(n int) Blackboard {
	if n <= 0 {
		n = defaultShardCount
	}
	st := &store{shards: make([]*shard, n)}
	for i := range st.shards {
		st.shards[i] = &shard{data: make(map[string]any)}
	}
	return &view{st: st}
}

func (v *view) fullKey(key string) string {
	if v.prefix == "" {
		return key
	}
	return v.prefix + key
}

func (v *view) Get(key string) (any, bool) {
	full := v.fullKey(key)
	sh := v.st.shardFor(full)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	value, ok := sh.data[full]
	return value, ok
}

func (v *view) Set(key string, value any) {
	full := v.fullKey(key)
	sh := v.st.shardFor(full)
	sh.mu.Lock()
	sh.data[full] = value
	sh.mu.Unlock()
}

func (v *view) Delete(key string) {
	full := v.fullKey(key)
	sh := v.st.shardFor(full)
	sh.mu.Lock()
	delete(sh.data, full)
	sh.mu.Unlock()
}

func (v *view) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// each calls fn for every visible entry with the view prefix stripped.
func (v *view) each(fn func(key string, value any)) {
	for _, sh := range v.st.shards {
		sh.mu.RLock()
		for k, val := range sh.data {
			if v.prefix != "" && !strings.HasPrefix(k, v.prefix) {
				continue
			}
			fn(strings.TrimPrefix(k, v.prefix), val)
		}
		sh.mu.RUnlock()
	}
}

func (v *view) Keys() []string {
	keys := make([]string, 0)
	v.each(func(k string, _ any) { keys = append(keys, k) })
	sort.Strings(keys)
	return keys
}

func (v *view) Len() int {
	n := 0
	v.each(func(string, any) { n++ })
	return n
}

func (v *view) Clear() {
	for _, sh := range v.st.shards {
		sh.mu.Lock()
		for k := range sh.data {
			if v.prefix == "" || strings.HasPrefix(k, v.prefix) {
				delete(sh.data, k)
			}
		}
		sh.mu.Unlock()
	}
}

func (v *view) Snapshot() map[string]any {
	out := make(map[string]any)
	v.each(func(k string, val any) { out[k] = val })
	return out
}

func (v *view) Namespace(ns string) Blackboard {
	// a ':' inside ns would let one namespace read another's keys
	ns = strings.ReplaceAll(ns, ":", "_")
	return &view{st: v.st, prefix: v.prefix + ns + ":"}
}

// Lookup retrieves key and asserts it to T. It reports false when the key is
// absent or holds a value of another type.
func Lookup[T any](bb Blackboard, key string) (T, bool) {
	var zero T
	value, ok := bb.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Int reads a numeric value as int, accepting the integer and float kinds
// that YAML, JSON and Go callers commonly store.
func Int(bb Blackboard, key string) (int, bool) {
	value, ok := bb.Get(key)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	default:
		return 0, false
	}
}
