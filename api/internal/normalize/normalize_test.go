package normalize

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanStripsLabel(t *testing.T) {
	c := Default()
	cases := map[string]string{
		"a) Cat":         "Cat",
		"b)Dog":          "Dog",
		"1. Apple":       "Apple",
		"  (c) Mango":    "Mango",
		"அ) பூனை":        "பூனை",
		"(ஆ) நாய்":       "நாய்",
		"10) ten":        "ten",
		"IV. Roman":      "Roman",
		"d)   spaced   ": "spaced   ",
		"a)\u00a0Cat":    "Cat",
		"\u00a0b) Dog":   "Dog",
		"c)\vEgg":        "Egg",
		"\u3000அ) பூனை":  "பூனை",
	}
	for in, want := range cases {
		assert.Equal(t, want, c.Clean(in), "input %q", in)
	}
}

func TestCleanLeavesUnlabelledText(t *testing.T) {
	c := Default()
	for _, s := range []string{"", "Cat", "பூனை", "a cat)", "- dash", "Hello, world.", "(no label"} {
		assert.Equal(t, s, c.Clean(s))
		assert.Equal(t, c.Clean(s), c.Clean(c.Clean(s)))
	}
}

// Only one label is removed. Text that itself starts with a label-shaped
// token after cleaning is truncated again on a second pass.
func TestCleanSingleLabelBoundary(t *testing.T) {
	c := Default()
	assert.Equal(t, "b) text", c.Clean("a) b) text"))
	assert.Equal(t, "text", c.Clean(c.Clean("a) b) text")))
	assert.Equal(t, "5 apples", c.Clean("1.5 apples"))
	assert.Equal(t, "Paris", c.Clean("A. Paris"))
}

func TestCustomGrammar(t *testing.T) {
	c := New(regexp.MustCompile(`^\s*\[\d+\]\s*`))
	assert.Equal(t, "Cat", c.Clean("[1] Cat"))
	assert.Equal(t, "a) Cat", c.Clean("a) Cat"))
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestCleanTreeSectioned(t *testing.T) {
	in := `{"header":{"class":"a) X"},"sections":[{"roman":"I","title":"1. Grammar","marks_eq":"2 X 1 = 2",
	"questions":[{"no":"1","text":"a) Choose","type":"mcq","options":["a) Cat","b) Dog",null,3]},
	{"no":"2","text":"Write"},{"no":"3","options":null},{"no":"4","options":"a) x"}]}]}`
	got := Default().CleanTree(decode(t, in))

	want := decode(t, in)
	q := want["sections"].([]any)[0].(map[string]any)["questions"].([]any)[0].(map[string]any)
	q["options"] = []any{"Cat", "Dog", "", float64(3)}
	assert.Equal(t, want, got)
}

func TestCleanTreeItems(t *testing.T) {
	in := `{"items":[{"type":"mcq","text":"1. Q","options":["(அ) ஒன்று","ஆ) இரண்டு"]},
	{"type":"para","heading":"a) H","text":"b) T"},{"type":"mcq","options":[]},"stray"]}`
	got := Default().CleanTree(decode(t, in))

	want := decode(t, in)
	want["items"].([]any)[0].(map[string]any)["options"] = []any{"ஒன்று", "இரண்டு"}
	assert.Equal(t, want, got)
}

func TestCleanTreeNoShapeIsNoop(t *testing.T) {
	in := `{"foo":{"options":["a) x"]},"options":["b) y"]}`
	assert.Equal(t, decode(t, in), Default().CleanTree(decode(t, in)))
	assert.Nil(t, Default().CleanTree(nil))
}
