package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/eventlog/internal/adapter/output"
	"github.com/jmylchreest/eventlog/internal/simulate"
)

var simulateOpts struct {
	format    string
	template  string
	finalOnly bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <script.yaml>",
	Short: "Replay a scripted session on a virtual clock",
	Long: `Replay a YAML script of events, waits and gestures against the overlay
and print the state after every step. Time only advances on wait steps, so
runs are deterministic.

Example script:

  name: idle strip hides
  viewport: {width: 400, height: 800}
  steps:
    - action: event
      title: Login
      repeat: 6
    - action: wait
      duration: 5s

Actions: event, wait, tap-peek, tap-collapse, tap-card, dismiss-detail,
swipe-up, swipe-down, tap, scroll.

Examples:
  # Print every step
  eventlog simulate idle.yaml

  # Only the final state, as JSON
  eventlog simulate idle.yaml --final --format json

  # Custom per-step output
  eventlog simulate idle.yaml --template '{{.Elapsed}} {{.State}}'

Use "-" to read the script from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml)")
	simulateCmd.Flags().StringVar(&simulateOpts.template, "template", "",
		"Custom Go template for each step (plain format)")
	simulateCmd.Flags().BoolVar(&simulateOpts.finalOnly, "final", false,
		"Only output the state after the last step")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(simulateOpts.format)
	if err != nil {
		return err
	}

	script, err := loadScript(args[0])
	if err != nil {
		return err
	}

	result, err := simulate.Run(script, getConfig(), logger)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = simulateOpts.template
	opts.FinalOnly = simulateOpts.finalOnly
	return output.NewFormatter(format, opts).Format(cmd.OutOrStdout(), result)
}

func loadScript(path string) (*simulate.Script, error) {
	if path != "-" {
		return simulate.Load(path)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read script from stdin: %w", err)
	}
	return simulate.Parse(data)
}
