package util

import (
	"path/filepath"
	"regexp"
	"strings"
)

// StripCodeFences removes every ```json and ``` marker and trims the result.
// Models wrap JSON in fences even when told not to; the markers are removed
// wherever they occur, not only at the edges.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

var reUnsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename reduces an uploaded file name to a single safe path element:
// ASCII letters, digits, '_', '.', '-'. Spaces become underscores, leading
// dots and underscores are dropped. Returns "" when nothing usable remains.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.Join(strings.Fields(name), "_")
	name = reUnsafeName.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Truncate cuts s to at most n bytes on a rune boundary and marks the cut.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
