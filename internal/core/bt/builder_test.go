package bt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/btree/internal/core/blackboard"
)

func evaluate(t *testing.T, tree *Tree) (Status, Node) {
	t.Helper()
	return tree.Tick(context.Background(), blackboard.New())
}

func TestTreeOutcomes(t *testing.T) {
	t.Run("Selector Falls Through To Success", func(t *testing.T) {
		tree, err := NewBuilder().
			Selector("root").
			Condition("no", Fixed(false)).
			Condition("yes", Fixed(true)).
			Finish().
			Build()
		require.NoError(t, err)
		st, _ := evaluate(t, tree)
		require.Equal(t, StatusSucceeded, st)
	})

	t.Run("Sequence Ends Running", func(t *testing.T) {
		tree, err := NewBuilder().
			Sequence("root").
			Condition("ready", Fixed(true)).
			Action("work", Fixed(true)).
			Finish().
			Build()
		require.NoError(t, err)
		st, active := evaluate(t, tree)
		require.Equal(t, StatusRunning, st)
		require.Equal(t, "work", active.Name())
	})

	t.Run("Sequence Stops At Failure", func(t *testing.T) {
		evaluated := false
		tree, err := NewBuilder().
			Sequence("root").
			Condition("ready", Fixed(true)).
			Condition("blocked", Fixed(false)).
			Action("work", func(TickContext) bool { evaluated = true; return true }).
			Finish().
			Build()
		require.NoError(t, err)
		st, _ := evaluate(t, tree)
		require.Equal(t, StatusFailed, st)
		require.False(t, evaluated)
	})

	t.Run("Active Node Is Inner Sequence", func(t *testing.T) {
		tree, err := NewBuilder().
			Selector("root").
			Sequence("first").
			Condition("no", Fixed(false)).
			Finish().
			Sequence("second").
			Condition("yes", Fixed(true)).
			Finish().
			Finish().
			Build()
		require.NoError(t, err)
		st, active := evaluate(t, tree)
		require.Equal(t, StatusSucceeded, st)
		second := tree.Root().(Branch).Children()[1]
		require.Same(t, second, active)
		require.Equal(t, "second", active.Name())
	})
}

func TestIdempotentEvaluation(t *testing.T) {
	tree := NewBuilder().
		Selector("root").
		Sequence("guard").
		Condition("enemy", Fixed(false)).
		Action("attack", Fixed(true)).
		Finish().
		Not().
		Condition("tired", Fixed(true)).
		Finish().
		Action("patrol", Fixed(true)).
		Finish().
		MustBuild()

	type outcome struct {
		status Status
		active Node
	}
	pass := func() []outcome {
		bb := blackboard.New()
		var out []outcome
		for i := 0; i < 5; i++ {
			st, active := tree.Tick(context.Background(), bb)
			out = append(out, outcome{st, active})
		}
		return out
	}

	first := pass()
	second := pass()
	require.Len(t, first, 5)
	require.Equal(t, first, second)
	for _, o := range first {
		require.Equal(t, StatusRunning, o.status)
		require.Equal(t, "patrol", o.active.Name())
	}
}

func TestEvaluateZeroTickContext(t *testing.T) {
	tree := NewBuilder().
		Sequence("root").
		Not().Condition("seen", func(tc TickContext) bool { return tc.BB.Has("x") }).Finish().
		Action("wait", func(tc TickContext) bool { return tc.Ctx.Err() == nil }).
		Finish().
		MustBuild()

	require.NotPanics(t, func() {
		st, active := tree.Evaluate(TickContext{})
		require.Equal(t, StatusRunning, st)
		require.Equal(t, "wait", active.Name())
	})
}

func TestRestartFromRoot(t *testing.T) {
	checks := 0
	tree := NewBuilder().
		Sequence("root").
		Condition("check", func(TickContext) bool { checks++; return true }).
		Action("work", Fixed(true)).
		Finish().
		MustBuild()

	for i := 0; i < 3; i++ {
		st, _ := evaluate(t, tree)
		require.Equal(t, StatusRunning, st)
	}
	require.Equal(t, 3, checks)
}

func TestBuilderBracketMatching(t *testing.T) {
	t.Run("Matched Pairs Build", func(t *testing.T) {
		b := NewBuilder().
			Sequence("a").
			Selector("b").
			Not().
			Sequence("c").
			Finish().
			Finish().
			Finish().
			Finish()
		require.Zero(t, b.Depth())
		tree, err := b.Build()
		require.NoError(t, err)
		require.Equal(t, 4, tree.Size())
	})

	t.Run("Extra Finish", func(t *testing.T) {
		_, err := NewBuilder().
			Sequence("a").
			Finish().
			Finish().
			Build()
		require.ErrorIs(t, err, ErrUnbalancedClose)
	})

	t.Run("Finish On Empty Builder", func(t *testing.T) {
		b := NewBuilder().Finish()
		require.ErrorIs(t, b.Err(), ErrUnbalancedClose)
	})

	t.Run("Empty Tree", func(t *testing.T) {
		_, err := NewBuilder().Build()
		require.ErrorIs(t, err, ErrEmptyTree)
	})

	t.Run("Unclosed Composites Close On Build", func(t *testing.T) {
		tree, err := NewBuilder().
			Sequence("root").
			Sequence("inner").
			Condition("ok", Fixed(true)).
			Build()
		require.NoError(t, err)
		st, _ := evaluate(t, tree)
		require.Equal(t, StatusSucceeded, st)
	})
}

func TestBuilderRoot(t *testing.T) {
	t.Run("Leaf Root", func(t *testing.T) {
		tree, err := NewBuilder().Condition("only", Fixed(true)).Build()
		require.NoError(t, err)
		require.Equal(t, "only", tree.Root().Name())
	})

	t.Run("Second Leaf Root", func(t *testing.T) {
		_, err := NewBuilder().
			Condition("one", Fixed(true)).
			Condition("two", Fixed(true)).
			Build()
		require.ErrorIs(t, err, ErrDuplicateRoot)
		require.Contains(t, err.Error(), `"two"`)
	})

	t.Run("Second Composite Root", func(t *testing.T) {
		_, err := NewBuilder().
			Sequence("one").
			Finish().
			Selector("two").
			Build()
		require.ErrorIs(t, err, ErrDuplicateRoot)
	})

	t.Run("Composite Root Is Pushed Once", func(t *testing.T) {
		b := NewBuilder().Sequence("root")
		require.Equal(t, 1, b.Depth())
		b.Finish()
		require.Zero(t, b.Depth())
		require.NoError(t, b.Err())
	})
}

func TestBuilderInverterArity(t *testing.T) {
	t.Run("Two Children", func(t *testing.T) {
		_, err := NewBuilder().
			Not().
			Condition("a", Fixed(true)).
			Condition("b", Fixed(true)).
			Finish().
			Build()
		require.ErrorIs(t, err, ErrInverterArity)
	})

	t.Run("Closed Empty", func(t *testing.T) {
		_, err := NewBuilder().
			Sequence("root").
			Not().
			Finish().
			Finish().
			Build()
		require.ErrorIs(t, err, ErrInverterArity)
	})

	t.Run("Built Open And Empty", func(t *testing.T) {
		_, err := NewBuilder().Inverter("never").Build()
		require.ErrorIs(t, err, ErrInverterArity)
	})

	t.Run("Subtree Counts As One Child", func(t *testing.T) {
		sub := NewBuilder().
			Sequence("sub").
			Condition("a", Fixed(true)).
			Condition("b", Fixed(true)).
			Finish().
			MustBuild()
		tree, err := NewBuilder().
			Not().
			AppendTree(sub.Root()).
			Finish().
			Build()
		require.NoError(t, err)
		st, _ := evaluate(t, tree)
		require.Equal(t, StatusFailed, st)
	})
}

func TestBuilderAppendTree(t *testing.T) {
	t.Run("Subtree Is Opaque", func(t *testing.T) {
		sub := NewBuilder().
			Selector("sub").
			Condition("no", Fixed(false)).
			Finish().
			MustBuild()

		b := NewBuilder().
			Sequence("root").
			AppendTree(sub.Root())
		require.Equal(t, 1, b.Depth())
		b.Condition("after", Fixed(true)).Finish()
		tree, err := b.Build()
		require.NoError(t, err)

		children := tree.Root().(Branch).Children()
		require.Len(t, children, 2)
		require.Equal(t, "after", children[1].Name())
		require.Len(t, sub.Root().(Branch).Children(), 1)
	})

	t.Run("Pre-built Leaves", func(t *testing.T) {
		c, err := NewCondition("ready", Fixed(true))
		require.NoError(t, err)
		a, err := NewAction("go", Fixed(true))
		require.NoError(t, err)

		tree, err := NewBuilder().
			Sequence("root").
			ConditionNode(c).
			ActionNode(a).
			Finish().
			Build()
		require.NoError(t, err)
		st, active := evaluate(t, tree)
		require.Equal(t, StatusRunning, st)
		require.Same(t, a, active)
	})

	t.Run("Nil Node", func(t *testing.T) {
		_, err := NewBuilder().Sequence("root").AppendTree(nil).Build()
		require.ErrorIs(t, err, ErrNilNode)

		_, err = NewBuilder().Sequence("root").ConditionNode(nil).Build()
		require.ErrorIs(t, err, ErrNilNode)
	})

	t.Run("Shared Node Rejected", func(t *testing.T) {
		c, err := NewCondition("shared", Fixed(true))
		require.NoError(t, err)
		NewBuilder().Sequence("one").ConditionNode(c).Finish().MustBuild()

		_, err = NewBuilder().Sequence("two").ConditionNode(c).Build()
		require.ErrorIs(t, err, ErrAlreadyAttached)

		_, err = NewBuilder().ConditionNode(c).Build()
		require.ErrorIs(t, err, ErrAlreadyAttached)
	})

	t.Run("Rejected By Inverter Stays Free", func(t *testing.T) {
		c, err := NewCondition("free", Fixed(true))
		require.NoError(t, err)
		_, err = NewBuilder().
			Not().
			Condition("first", Fixed(true)).
			ConditionNode(c).
			Build()
		require.ErrorIs(t, err, ErrInverterArity)

		_, err = NewBuilder().Sequence("root").ConditionNode(c).Build()
		require.NoError(t, err)
	})

	t.Run("Custom Node", func(t *testing.T) {
		custom := &stub{name: "custom", status: StatusRunning}
		tree, err := NewBuilder().Selector("root").AppendTree(custom).Build()
		require.NoError(t, err)
		st, active := evaluate(t, tree)
		require.Equal(t, StatusRunning, st)
		require.Same(t, custom, active)
		require.Equal(t, "custom", Kind(custom))
	})
}

func TestBuilderStickyError(t *testing.T) {
	b := NewBuilder().
		Finish().
		Sequence("ignored").
		Condition("ignored", Fixed(true))
	require.ErrorIs(t, b.Err(), ErrUnbalancedClose)
	require.Zero(t, b.Depth())
	require.Contains(t, b.Err().Error(), "call 1")

	_, err := b.Build()
	require.ErrorIs(t, err, ErrUnbalancedClose)

	t.Run("Nil Predicate", func(t *testing.T) {
		_, err := NewBuilder().Sequence("root").Condition("c", nil).Build()
		require.ErrorIs(t, err, ErrNilPredicate)
		_, err = NewBuilder().Sequence("root").Action("a", nil).Build()
		require.ErrorIs(t, err, ErrNilPredicate)
	})

	t.Run("MustBuild Panics", func(t *testing.T) {
		require.Panics(t, func() { NewBuilder().MustBuild() })
	})
}

func TestBuilderSealed(t *testing.T) {
	b := NewBuilder().Sequence("root").Condition("c", Fixed(true))
	tree, err := b.Build()
	require.NoError(t, err)

	again, err := b.Build()
	require.NoError(t, err)
	require.Same(t, tree, again)

	b.Condition("late", Fixed(true)).Finish()
	require.ErrorIs(t, b.Err(), ErrBuilderSealed)
	require.Len(t, tree.Root().(Branch).Children(), 1)

	again, err = b.Build()
	require.NoError(t, err)
	require.Same(t, tree, again)
}

func TestTreeWalk(t *testing.T) {
	tree := NewBuilder().
		Selector("root").
		Sequence("fight").
		Condition("enemy", Fixed(true)).
		Action("attack", Fixed(true)).
		Finish().
		Not().
		Condition("tired", Fixed(false)).
		Finish().
		Finish().
		MustBuild()

	var names []string
	var depths []int
	var kinds []string
	tree.Walk(func(n Node, depth int) bool {
		names = append(names, n.Name())
		depths = append(depths, depth)
		kinds = append(kinds, Kind(n))
		return true
	})
	require.Equal(t, []string{"root", "fight", "enemy", "attack", "Not", "tired"}, names)
	require.Equal(t, []int{0, 1, 2, 2, 1, 2}, depths)
	require.Equal(t, []string{"selector", "sequence", "condition", "action", "not", "condition"}, kinds)

	pruned := 0
	tree.Walk(func(n Node, depth int) bool {
		pruned++
		return depth == 0
	})
	require.Equal(t, 3, pruned)
}
