package eventlog

import (
	"fmt"
	"slices"
	"strings"
)

// FormatParams renders params as "key: value" lines sorted by key and
// joined with "\n". The order does not depend on map iteration, so equal
// parameter sets always render identically.
func FormatParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %v", k, params[k])
	}
	return b.String()
}
