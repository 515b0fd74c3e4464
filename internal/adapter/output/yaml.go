package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/eventlog/internal/simulate"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes the result as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, result *simulate.Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(f.selected(result)); err != nil {
		return err
	}
	return encoder.Close()
}

func (f *YAMLFormatter) selected(result *simulate.Result) *simulate.Result {
	return selected(result, f.opts)
}
