package docx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// Funcs are available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"list":  List,
		"get":   Get,
		"str":   Str,
		"text":  Text,
		"opt":   Opt,
		"has":   Has,
		"first": First,
		"inc":   func(i int) int { return i + 1 },
	}
}

// List returns v as a list, or nil when it is not one.
func List(v any) []any {
	l, _ := v.([]any)
	return l
}

// Get looks key up in a JSON object; anything else yields nil.
func Get(v any, key string) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

// Str renders a JSON scalar as text. nil is "".
func Str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

const lineBreak = `</w:t><w:br/><w:t xml:space="preserve">`

// Text escapes v for use inside <w:t> and turns newlines into line breaks.
func Text(v any) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(Str(v)))
	s := strings.ReplaceAll(b.String(), "&#xD;&#xA;", "&#xA;")
	return strings.ReplaceAll(s, "&#xA;", lineBreak)
}

// Opt returns the i-th entry of v["options"] as text, or "".
func Opt(v any, i int) string {
	opts := List(Get(v, "options"))
	if i < 0 || i >= len(opts) {
		return ""
	}
	return Str(opts[i])
}

// Has reports whether v[key] is present and non-empty.
func Has(v any, key string) bool {
	switch x := Get(v, key).(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	case bool:
		return x
	default:
		return true
	}
}

// First returns the first non-empty v[key] as text.
func First(v any, keys ...string) string {
	for _, k := range keys {
		if s := Str(Get(v, k)); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
