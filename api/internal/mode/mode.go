// Package mode maps an extraction mode to everything that depends on it:
// the instruction text sent to the model, the document templates used to
// render the result and whether option labels are cleaned.
package mode

import "strings"

// Mode selects extraction behavior.
type Mode string

const (
	StructuredForm Mode = "structured-form"
	Verbatim       Mode = "verbatim"
	MCQOnly        Mode = "mcq-only"
	ParagraphOnly  Mode = "paragraph-only"
	Mixed          Mode = "mixed"

	Default = Mixed
)

// Shape is the top-level JSON variant a mode asks the model for.
type Shape string

const (
	ShapeSectioned Shape = "sections"
	ShapeItems     Shape = "items"
)

// Template asset names.
const (
	TemplateExam    = "template_exam.docx"
	TemplateGeneric = "template_generic.docx"
	TemplateDefault = "template.docx"
)

// Profile is the fixed behavior bundle for one mode.
type Profile struct {
	Mode Mode
	// Title is a short human label for UIs.
	Title string
	Task  string
	// Templates are tried in order; the first one present in the store is used.
	Templates []string
	Normalize bool
	Shape     Shape
}

var order = []Mode{StructuredForm, Verbatim, MCQOnly, ParagraphOnly, Mixed}

var profiles = map[Mode]Profile{
	StructuredForm: {
		Mode:      StructuredForm,
		Title:     "Structured school exam paper",
		Task:      taskStructuredForm,
		Templates: []string{TemplateExam},
		Normalize: true,
		Shape:     ShapeSectioned,
	},
	Verbatim: {
		Mode:      Verbatim,
		Title:     "Exact transcription (original layout)",
		Task:      taskVerbatim,
		Templates: []string{TemplateGeneric, TemplateDefault},
		Normalize: false,
		Shape:     ShapeItems,
	},
	MCQOnly: {
		Mode:      MCQOnly,
		Title:     "Multiple choice questions only",
		Task:      taskMCQOnly,
		Templates: []string{TemplateDefault},
		Normalize: true,
		Shape:     ShapeItems,
	},
	ParagraphOnly: {
		Mode:      ParagraphOnly,
		Title:     "Paragraphs only",
		Task:      taskParagraphOnly,
		Templates: []string{TemplateDefault},
		Normalize: true,
		Shape:     ShapeItems,
	},
	Mixed: {
		Mode:      Mixed,
		Title:     "Everything (questions and paragraphs)",
		Task:      taskMixed,
		Templates: []string{TemplateDefault},
		Normalize: true,
		Shape:     ShapeItems,
	},
}

var aliases = map[string]Mode{
	"mak-tamil": StructuredForm,
	"original":  Verbatim,
	"choose":    MCQOnly,
	"paragraph": ParagraphOnly,
	"both":      Mixed,
}

// Parse resolves a caller-supplied mode string. Canonical names and the legacy
// aliases are accepted case-insensitively; anything else yields Default with ok=false.
func Parse(s string) (Mode, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := profiles[Mode(key)]; ok {
		return Mode(key), true
	}
	if m, ok := aliases[key]; ok {
		return m, true
	}
	return Default, false
}

// Resolve is Parse without the ok flag.
func Resolve(s string) Mode {
	m, _ := Parse(s)
	return m
}

// Valid reports whether m is one of the canonical modes.
func (m Mode) Valid() bool {
	_, ok := profiles[m]
	return ok
}

func (m Mode) String() string { return string(m) }

// ProfileFor returns the profile of m, or the Default profile for unknown values.
func ProfileFor(m Mode) Profile {
	if p, ok := profiles[m]; ok {
		return p
	}
	return profiles[Default]
}

// InstructionsFor returns the full instruction text for m: the shared preamble
// followed by the mode task. Unknown modes get the Default instructions.
func InstructionsFor(m Mode) string {
	return Preamble + ProfileFor(m).Task
}

// All lists the canonical modes in a stable order.
func All() []Profile {
	out := make([]Profile, 0, len(order))
	for _, m := range order {
		out = append(out, profiles[m])
	}
	return out
}
