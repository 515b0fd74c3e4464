// Package output provides output formatters for simulation results.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/eventlog/internal/simulate"
)

// Formatter formats simulation results for output.
type Formatter interface {
	// Format writes the formatted result to the writer.
	Format(w io.Writer, result *simulate.Result) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ValidFormats returns all valid format types.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	for _, f := range ValidFormats() {
		if s == string(f) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, must be one of: %v", s, ValidFormats())
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string // Custom per-step template for plain format
	FinalOnly bool   // Only output the last step
}

// DefaultFormatterOptions returns sensible defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{}
}

// steps returns the steps selected by opts.
func steps(result *simulate.Result, opts FormatterOptions) []simulate.StepResult {
	if opts.FinalOnly && len(result.Steps) > 0 {
		return result.Steps[len(result.Steps)-1:]
	}
	return result.Steps
}

// selected returns result narrowed to the steps selected by opts.
func selected(result *simulate.Result, opts FormatterOptions) *simulate.Result {
	if !opts.FinalOnly {
		return result
	}
	narrowed := *result
	narrowed.Steps = steps(result, opts)
	return &narrowed
}
