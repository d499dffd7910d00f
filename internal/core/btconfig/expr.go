package btconfig

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

// CompileExpr compiles a boolean expression over blackboard keys.
// Undefined keys evaluate to nil; a runtime error makes the predicate false.
func CompileExpr(src string, logger log.Log) (bt.Predicate, error) {
	program, err := expr.Compile(src,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpr, src, err)
	}
	if logger == nil {
		logger = log.Nop()
	}
	return exprPredicate(src, program, logger), nil
}

func exprPredicate(src string, program *vm.Program, logger log.Log) bt.Predicate {
	return func(tc bt.TickContext) bool {
		out, err := expr.Run(program, tc.BB.Snapshot())
		if err != nil {
			logger.Debug("expression evaluation failed",
				log.String("expr", src),
				log.Uint64("tick", tc.Tick),
				log.Error(err),
			)
			return false
		}
		ok, _ := out.(bool)
		return ok
	}
}
