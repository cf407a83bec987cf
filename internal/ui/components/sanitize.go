package components

import (
	"regexp"
	"strings"
	"unicode"
)

// escapeSeq matches CSI sequences and OSC sequences ended by BEL or ST.
var escapeSeq = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

// Clean strips terminal escape sequences, control characters and bidi
// overrides from text received from the engine. Newlines and tabs survive.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = escapeSeq.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\t':
			return r
		case unicode.Is(unicode.Bidi_Control, r), unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

var lineFolder = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// CleanLine is Clean folded onto a single trimmed line.
func CleanLine(s string) string {
	return strings.TrimSpace(lineFolder.Replace(Clean(s)))
}
