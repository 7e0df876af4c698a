// Package paper is a typed, read-only view of normalized extraction data.
package paper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Text accepts any JSON scalar. Numbers and booleans keep their literal
// form, null is empty and objects or arrays keep their raw JSON.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

type Header struct {
	Class Text `json:"class"`
	Marks Text `json:"marks"`
	Date  Text `json:"date"`
	Time  Text `json:"time"`
}

// UnmarshalJSON reads an object header; any other JSON value is an empty header.
func (h *Header) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		*h = Header{}
		return nil
	}
	type plain Header
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*h = Header(p)
	return nil
}

func (h *Header) Empty() bool {
	return h == nil || h.Class == "" && h.Marks == "" && h.Date == "" && h.Time == ""
}

type Question struct {
	No      Text   `json:"no"`
	QNo     Text   `json:"q_no"`
	Text    Text   `json:"text"`
	Type    Text   `json:"type"`
	Options []Text `json:"options"`
}

// Number is the question number from either "no" or "q_no".
func (q Question) Number() Text {
	if q.No != "" {
		return q.No
	}
	return q.QNo
}

type Section struct {
	Roman     Text       `json:"roman"`
	Title     Text       `json:"title"`
	MarksEq   Text       `json:"marks_eq"`
	Questions []Question `json:"questions"`
}

type Item struct {
	Question
	Heading Text `json:"heading"`
	Content Text `json:"content"`
	Style   Text `json:"style"`
}

type Paper struct {
	Header   *Header   `json:"header"`
	Sections []Section `json:"sections"`
	Items    []Item    `json:"items"`
}

// FromTree decodes a normalized data tree.
func FromTree(data map[string]any) (Paper, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return Paper{}, fmt.Errorf("paper: encode tree: %w", err)
	}
	var p Paper
	if err := json.Unmarshal(b, &p); err != nil {
		return Paper{}, fmt.Errorf("paper: decode tree: %w", err)
	}
	return p, nil
}

func (p Paper) Sectioned() bool { return p.Sections != nil }

// QuestionCount counts questions across sections plus items.
func (p Paper) QuestionCount() int {
	n := len(p.Items)
	for _, s := range p.Sections {
		n += len(s.Questions)
	}
	return n
}

// Label is the 1-based option label used on exported sheets (A, B, ...).
func Label(i int) string {
	if i >= 0 && i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}
