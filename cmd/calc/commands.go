package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/solver"
)

// deps are the seams the commands reach the outside world through.
type deps struct {
	loadConfig func(path string) (config.Config, error)
	newSolver  func(cfg config.AI) (solver.Solver, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: func(path string) (config.Config, error) {
			if err := config.LoadDotEnv(); err != nil {
				return config.Config{}, err
			}
			return config.Load(path)
		},
		newSolver: func(cfg config.AI) (solver.Solver, error) {
			return solver.FromConfig(cfg, zap.NewNop())
		},
	}
}

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "calc",
		Short:         "Four-function calculator with an AI assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newKeysCommand())
	root.AddCommand(newSolveCommand(d))
	root.AddCommand(newVersionCommand())
	return root
}

func newKeysCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "keys <script>",
		Short: "Run a key script such as \"12+7{Enter}\" and print the result",
		Long: "Each character is one key press; whitespace is ignored and named keys are\n" +
			"written in braces ({Enter}, {Escape}). Unbound keys are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := calculator.ParseKeys(strings.Join(args, ""))
			if err != nil {
				return err
			}

			state := calculator.New()
			for _, key := range keys {
				if action := calculator.MapKey(key, calculator.PanelNone); action.Event != nil {
					state = calculator.Reduce(state, action.Event)
				}
			}
			return printState(cmd.OutOrStdout(), state, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full snapshot as JSON")
	return cmd
}

func newSolveCommand(d deps) *cobra.Command {
	var (
		configPath string
		timeout    time.Duration
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "solve <prompt>",
		Short: "Ask the AI solver a natural-language question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return errors.New("prompt must not be empty")
			}

			cfg, err := d.loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if timeout > 0 {
				cfg.AI.Timeout = timeout
			}

			s, err := d.newSolver(cfg.AI)
			if err != nil {
				return fmt.Errorf("build solver: %w", err)
			}

			state := calculator.Reduce(calculator.New(), calculator.BeginAIEvent{})
			sol, err := solver.WithTimeout(s, cfg.AI.Timeout).Solve(cmd.Context(), prompt)
			if err != nil {
				state = calculator.Reduce(state, calculator.AIFailureEvent{Err: err})
				if perr := printState(cmd.OutOrStdout(), state, asJSON); perr != nil {
					return perr
				}
				return fmt.Errorf("solve: %w", err)
			}

			state = calculator.Reduce(state, calculator.AIResultEvent{
				Prompt:      prompt,
				Result:      sol.Result,
				Explanation: sol.Explanation,
			})
			return printState(cmd.OutOrStdout(), state, asJSON)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (defaults to $"+config.PathEnv+")")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "override the AI request timeout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full snapshot as JSON")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "calc version %s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			return nil
		},
	}
}

func printState(out io.Writer, state calculator.State, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(calculator.NewSnapshot(state, calculator.PanelNone))
	}

	fmt.Fprintln(out, state.Display)
	if state.LastExplanation != "" {
		fmt.Fprintf(out, "\n%s\n", state.LastExplanation)
	}
	if len(state.History) > 0 {
		fmt.Fprintln(out, "\nhistory:")
		for _, entry := range state.History {
			fmt.Fprintf(out, "  %s\n", entry)
		}
	}
	return nil
}
