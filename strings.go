package partnerfile

import "strings"

// Collapse trims a cell value and collapses runs of inner whitespace to a
// single space. All cells pass through this before any further processing.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
