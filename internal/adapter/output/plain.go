package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/eventlog/internal/simulate"
)

// PlainFormatter formats results as one line per step.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"upper": strings.ToUpper,
	}
}

// Format writes the steps followed by a summary line.
func (f *PlainFormatter) Format(w io.Writer, result *simulate.Result) error {
	if result.Name != "" && f.template == nil {
		if _, err := fmt.Fprintf(w, "# %s\n", result.Name); err != nil {
			return err
		}
	}

	for _, s := range steps(result, f.opts) {
		if err := f.formatStep(w, &s); err != nil {
			return err
		}
	}

	if f.template != nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "hides: %d\n", result.Hides)
	return err
}

// formatStep formats a single step.
func (f *PlainFormatter) formatStep(w io.Writer, s *simulate.StepResult) error {
	// Use custom template if available
	if f.template != nil {
		if err := f.template.Execute(w, s); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%3d  %-8s  %-14s  %-9s  recent=[%s] history=%d",
		s.Step, s.Elapsed, s.Action, s.State, strings.Join(s.Recent, ", "), s.History)

	if s.Detail != "" {
		fmt.Fprintf(&sb, " detail=%q", s.Detail)
	}
	if s.Claimed != nil {
		fmt.Fprintf(&sb, " claimed=%t", *s.Claimed)
	}
	if s.Scroll != 0 {
		fmt.Fprintf(&sb, " scroll=%.0f", s.Scroll)
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
