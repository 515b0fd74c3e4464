package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/eventlog/internal/simulate"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes the result as an indented JSON document.
func (f *JSONFormatter) Format(w io.Writer, result *simulate.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.selected(result))
}

func (f *JSONFormatter) selected(result *simulate.Result) *simulate.Result {
	return selected(result, f.opts)
}
