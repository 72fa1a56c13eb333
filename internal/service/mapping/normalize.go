package mapping

import (
	"strings"
	"unicode"
)

// NormalizeName reduces a restaurant name to its duplicate-detection key:
// digits stripped, whitespace collapsed, lowercased. Heuristic only —
// colliding keys are merge candidates, never auto-merged.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastSpace := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsDigit(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(unicode.ToLower(r))
	}

	return strings.TrimSpace(b.String())
}
