package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/btree/internal/core/agent"
	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/injector"
)

type runOptions struct {
	ticks  int
	agents int
	sets     []string
	stop     bool
	failFast bool
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Tick a tree for a number of agents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, args[0], opts)
		},
	}
	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", 1, "Number of ticks")
	cmd.Flags().IntVarP(&opts.agents, "agents", "a", 1, "Number of agents sharing the tree")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Initial blackboard entry key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.stop, "stop", false, "Stop early once no agent is running")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Abort a tick at the first agent error")
	return cmd
}

func runTree(cmd *cobra.Command, path string, opts runOptions) error {
	if opts.ticks < 1 || opts.agents < 1 {
		return fmt.Errorf("--ticks and --agents must be positive")
	}
	entries, err := parseSets(opts.sets)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, cleanup, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	tree, err := rt.LoadTree(path)
	if err != nil {
		return err
	}
	for i := 0; i < opts.agents; i++ {
		a, err := rt.Spawn(fmt.Sprintf("agent-%d", i+1), tree)
		if err != nil {
			return err
		}
		for k, v := range entries {
			a.Blackboard().Set(k, v)
		}
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	tickAll := rt.Fleet.TickAll
	if opts.failFast {
		tickAll = rt.Fleet.TickAllStrict
	}
	for n := 0; n < opts.ticks; n++ {
		results, err := tickAll(ctx)
		if err != nil {
			return err
		}
		if printResults(cmd, results) == 0 && opts.stop {
			break
		}
	}

	summary, err := rt.Summary()
	if err != nil {
		return err
	}
	if summary != nil {
		statuses := make([]string, 0, len(summary))
		for s := range summary {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		parts := make([]string, 0, len(statuses))
		for _, s := range statuses {
			parts = append(parts, fmt.Sprintf("%s=%.0f", s, summary[s]))
		}
		fmt.Fprintf(out, "ticks: %s\n", strings.Join(parts, " "))
	}
	return nil
}

// printResults writes one line per agent and returns how many are running.
func printResults(cmd *cobra.Command, results []agent.Result) int {
	running := 0
	for _, r := range results {
		if r.Status == bt.StatusRunning {
			running++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tick=%d agent=%s status=%s active=%q\n", r.Tick, r.Name, r.Status, r.Active)
	}
	return running
}

// parseSets turns key=value flags into blackboard entries. Values are read
// as YAML scalars, so numbers and booleans keep their type.
func parseSets(sets []string) (map[string]any, error) {
	out := make(map[string]any, len(sets))
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: want key=value", s)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("--set %q: %w", s, err)
		}
		out[key] = v
	}
	return out, nil
}
