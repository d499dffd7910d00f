package btconfig

import (
	"fmt"
	"reflect"

	"github.com/zeusync/btree/internal/core/blackboard"
	"github.com/zeusync/btree/internal/core/bt"
)

type keyParams struct {
	Key string `mapstructure:"key"`
}

type keyValueParams struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

type countParams struct {
	Key   string `mapstructure:"key"`
	Limit int    `mapstructure:"limit"`
}

var (
	errKeyRequired   = fmt.Errorf("%w: key is required", ErrInvalidParams)
	errNegativeLimit = fmt.Errorf("%w: limit must not be negative", ErrInvalidParams)
)

// RegisterBuiltins installs the blackboard leaves every registry starts with.
//
// Conditions: has{key}, equals{key,value}, truthy{key}.
// Actions: set{key,value}, unset{key}, count{key,limit}.
func RegisterBuiltins(r *Registry) {
	r.RegisterCondition("has", func(p Params) (bt.Predicate, error) {
		var kp keyParams
		if err := decodeKey(p, &kp, &kp.Key); err != nil {
			return nil, err
		}
		return func(tc bt.TickContext) bool { return tc.BB.Has(kp.Key) }, nil
	})

	r.RegisterCondition("equals", func(p Params) (bt.Predicate, error) {
		var kv keyValueParams
		if err := decodeKey(p, &kv, &kv.Key); err != nil {
			return nil, err
		}
		return func(tc bt.TickContext) bool {
			v, ok := tc.BB.Get(kv.Key)
			return ok && looseEqual(v, kv.Value)
		}, nil
	})

	r.RegisterCondition("truthy", func(p Params) (bt.Predicate, error) {
		var kp keyParams
		if err := decodeKey(p, &kp, &kp.Key); err != nil {
			return nil, err
		}
		return func(tc bt.TickContext) bool {
			v, ok := tc.BB.Get(kp.Key)
			return ok && truthy(v)
		}, nil
	})

	r.RegisterAction("set", func(p Params) (bt.Predicate, error) {
		var kv keyValueParams
		if err := decodeKey(p, &kv, &kv.Key); err != nil {
			return nil, err
		}
		return func(tc bt.TickContext) bool {
			tc.BB.Set(kv.Key, kv.Value)
			return true
		}, nil
	})

	r.RegisterAction("unset", func(p Params) (bt.Predicate, error) {
		var kp keyParams
		if err := decodeKey(p, &kp, &kp.Key); err != nil {
			return nil, err
		}
		return func(tc bt.TickContext) bool {
			tc.BB.Delete(kp.Key)
			return true
		}, nil
	})

	// count increments key each tick and keeps running until limit is
	// exceeded; limit 0 runs forever.
	r.RegisterAction("count", func(p Params) (bt.Predicate, error) {
		var cp countParams
		if err := decodeKey(p, &cp, &cp.Key); err != nil {
			return nil, err
		}
		if cp.Limit < 0 {
			return nil, errNegativeLimit
		}
		return func(tc bt.TickContext) bool {
			n, _ := blackboard.Int(tc.BB, cp.Key)
			n++
			tc.BB.Set(cp.Key, n)
			return cp.Limit == 0 || n <= cp.Limit
		}, nil
	})
}

func decodeKey(p Params, out any, key *string) error {
	if err := p.Decode(out); err != nil {
		return err
	}
	if *key == "" {
		return errKeyRequired
	}
	return nil
}

func looseEqual(a, b any) bool {
	if fa, ok := toFloat64(a); ok {
		if fb, ok := toFloat64(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := toFloat64(v); ok {
		return f != 0
	}
	return true
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
