// Package normalize strips enumerator labels ("a)", "1.", "அ)") from option text.
package normalize

import "regexp"

// DefaultLabelPattern matches one leading label: optional whitespace, an optional
// "(", one or more letters/digits/underscore or Tamil-block runes, then "." or ")"
// and any trailing whitespace. Whitespace is Unicode-wide (NBSP, ideographic
// space, \v, U+0085, U+001C-U+001F), not just RE2's ASCII \s.
const DefaultLabelPattern = `^` + ws + `\(?[\p{L}\p{N}_\x{0B80}-\x{0BFF}]+[.)]` + ws

const ws = `[\s\v\p{Z}\x{0085}\x{1C}-\x{1F}]*`

var defaultLabel = regexp.MustCompile(DefaultLabelPattern)

// Cleaner removes a single leading label from strings using its grammar.
type Cleaner struct {
	label *regexp.Regexp
}

// New returns a Cleaner for the given label grammar; nil selects the default.
func New(label *regexp.Regexp) *Cleaner {
	if label == nil {
		label = defaultLabel
	}
	return &Cleaner{label: label}
}

// Default returns a Cleaner using DefaultLabelPattern.
func Default() *Cleaner { return New(nil) }

// Clean removes at most one leading label from text.
func (c *Cleaner) Clean(text string) string {
	loc := c.label.FindStringIndex(text)
	if loc == nil || loc[0] != 0 {
		return text
	}
	return text[loc[1]:]
}

// CleanTree cleans every "options" list found under sections[].questions[] or
// items[] in place and returns the same tree. Other fields are not touched.
func (c *Cleaner) CleanTree(data map[string]any) map[string]any {
	if data == nil {
		return data
	}
	if sections, ok := data["sections"].([]any); ok {
		for _, s := range sections {
			sec, ok := s.(map[string]any)
			if !ok {
				continue
			}
			questions, _ := sec["questions"].([]any)
			for _, q := range questions {
				c.cleanOptions(q)
			}
		}
	}
	if items, ok := data["items"].([]any); ok {
		for _, it := range items {
			c.cleanOptions(it)
		}
	}
	return data
}

func (c *Cleaner) cleanOptions(entry any) {
	m, ok := entry.(map[string]any)
	if !ok {
		return
	}
	opts, ok := m["options"].([]any)
	if !ok || len(opts) == 0 {
		return
	}
	for i, o := range opts {
		switch v := o.(type) {
		case string:
			opts[i] = c.Clean(v)
		case nil:
			opts[i] = ""
		}
	}
}
