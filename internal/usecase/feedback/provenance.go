package feedback

import (
	"fmt"
	"strings"
)

// RenderProvenance rewrites source into the line-numbered form the generation
// stages consume: "{n} | {line}" for unchanged lines, "{n} | + {line}" for
// added or modified lines. added holds the 1-indexed line numbers that are
// new relative to the baseline; a nil set means every line is new (a new
// file, or a standalone single-file submission).
//
// The rendering is the only signal the Draft stage receives about which
// lines changed, so it must preserve line order and content exactly.
func RenderProvenance(source string, added map[int]bool) string {
	if source == "" {
		return ""
	}

	trailingNewline := strings.HasSuffix(source, "\n")
	lines := strings.Split(source, "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	var b strings.Builder
	for i, line := range lines {
		n := i + 1
		if added == nil || added[n] {
			fmt.Fprintf(&b, "%d | + %s", n, line)
		} else {
			fmt.Fprintf(&b, "%d | %s", n, line)
		}
		if i < len(lines)-1 || trailingNewline {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
