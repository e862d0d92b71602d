// Package textproc cleans processor output before it is pasted.
package textproc

import (
	"regexp"
	"strings"
)

var (
	escapes = strings.NewReplacer(
		`\r\n`, "\n",
		`\n`, "\n",
		`\r`, "\n",
		`\t`, "\t",
		`\"`, `"`,
		`\'`, "'",
	)
	blankRuns = regexp.MustCompile(`\n\s*\n\s*\n`)
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	crlf      = strings.NewReplacer("\r\n", "\n")
)

// Normalize turns literal escape sequences into the characters they name,
// limits blank lines to one, collapses runs of spaces and tabs and trims
// the result.
func Normalize(s string) string {
	s = escapes.Replace(s)
	s = crlf.Replace(s)
	for blankRuns.MatchString(s) {
		s = blankRuns.ReplaceAllString(s, "\n\n")
	}
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FormatForPaste is the formatting applied to every text injection.
func FormatForPaste(s string) string {
	return Normalize(s)
}
