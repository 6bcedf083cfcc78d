package merge

import "strings"

// wrapText greedily word-wraps s to the given column width. Whitespace runs
// collapse to single spaces; a word longer than the width gets a line of its
// own rather than being split.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)
	return lines
}
