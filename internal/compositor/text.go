package compositor

import "strings"

// lineSpacing is the line height as a multiple of the font size.
const lineSpacing = 1.15

// wrapText breaks s into lines no wider than width, measured by measure.
// Explicit newlines are kept; a single word wider than width gets its own line.
func wrapText(s string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

// blockTop returns the top of an n-line text block anchored at y.
func blockTop(y float64, anchor Anchor, lines int, lineHeight float64) float64 {
	if anchor == AnchorBottom {
		return y - float64(lines)*lineHeight
	}
	return y
}
