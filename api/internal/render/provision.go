package render

import (
	"fmt"
	"os"
	"path/filepath"

	"paper-docx/api/internal/docx"
	"paper-docx/api/internal/mode"
)

const rule = "__________________________________________________________________________________________"

// ExamTemplate is the Tamil school question-paper layout used by structured-form.
func ExamTemplate() *docx.Builder {
	b := docx.NewBuilder().Font("Nirmala UI", 10).Margins(docx.Inch / 2)

	b.Add(docx.Paragraph{Align: docx.AlignCenter, Runs: []docx.Run{{Text: "எம். ஏ.கே. குழுமப் பள்ளிகள்", Bold: true, Size: 14}}})

	cell := func(align, text string) docx.Cell {
		return docx.Cell{Width: 3 * docx.Inch, Paragraphs: []docx.Paragraph{{Align: align, Runs: []docx.Run{{Text: text, Bold: true}}}}}
	}
	b.Table([][]docx.Cell{
		{cell(docx.AlignLeft, `வகுப்பு: {{text (get (get . "header") "class")}}`), cell(docx.AlignRight, `மதிப்பெண்கள்: {{text (get (get . "header") "marks")}}`)},
		{cell(docx.AlignLeft, `தேதி: {{text (get (get . "header") "date")}}`), cell(docx.AlignRight, `நேரம்: {{text (get (get . "header") "time")}}`)},
		{cell(docx.AlignLeft, "தமிழ் முதல் தாள்"), cell(docx.AlignRight, "")},
	})
	b.Text(rule)

	b.Action(`range $s := list (get . "sections")`)
	b.Add(docx.Paragraph{RightTab: 7*docx.Inch + docx.Inch*3/10, Runs: []docx.Run{
		{Text: `{{text (get $s "roman")}}. {{text (get $s "title")}}`, Bold: true},
		{Tab: true},
		{Text: `{{text (get $s "marks_eq")}}`, Bold: true},
	}})
	b.Action(`range $q := list (get $s "questions")`)
	b.Text(`{{with first $q "no" "q_no"}}{{text .}}. {{end}}{{text (get $q "text")}}`)
	b.Action(`if has $q "options"`)
	b.Add(docx.Paragraph{Indent: docx.Inch * 4 / 10, Runs: []docx.Run{
		{Text: `{{if opt $q 0}} அ) {{text (opt $q 0)}}    {{end}}`},
		{Text: `{{if opt $q 1}} ஆ) {{text (opt $q 1)}}    {{end}}`},
		{Text: `{{if opt $q 2}} இ) {{text (opt $q 2)}}    {{end}}`},
		{Text: `{{if opt $q 3}} ஈ) {{text (opt $q 3)}}    {{end}}`},
	}})
	b.Action(`end`)
	b.Action(`end`)
	b.Action(`end`)
	b.Text("_______________________________________________")
	return b
}

// DefaultTemplate lays out item lists: paragraphs, MCQs and verbatim blocks.
func DefaultTemplate() *docx.Builder {
	b := docx.NewBuilder().Font("Nirmala UI", 11)

	b.Action(`range $it := list (get . "items")`)
	b.Action(`$t := str (get $it "type")`)
	b.Action(`if eq $t "para"`)
	b.Text("--------------------------------------------------")
	b.Action(`if has $it "heading"`)
	b.Bold(`Topic: {{text (get $it "heading")}}`)
	b.Action(`end`)
	b.Text(`{{text (get $it "text")}}`)
	b.Text("--------------------------------------------------")
	b.Action(`else if eq $t "mcq"`)
	b.Text(`{{with first $it "q_no" "no"}}{{text .}}. {{end}}{{text (get $it "text")}}`)
	for i, label := range []string{"a", "b", "c", "d"} {
		b.Add(docx.Paragraph{Indent: docx.Inch / 4, Runs: []docx.Run{{
			Text: fmt.Sprintf(`{{if opt $it %d}}%s) {{text (opt $it %d)}}{{end}}`, i, label, i),
		}}})
	}
	b.Action(`else`)
	b.Action(`if has $it "heading"`)
	b.Bold(`{{text (get $it "heading")}}`)
	b.Action(`end`)
	b.Text(`{{text (first $it "content" "text")}}`)
	b.Action(`end`)
	b.Action(`end`)
	return b
}

// GenericTemplate keeps verbatim transcriptions as plain consecutive blocks.
func GenericTemplate() *docx.Builder {
	b := docx.NewBuilder().Font("Nirmala UI", 11)
	b.Action(`range $it := list (get . "items")`)
	b.Action(`if has $it "heading"`)
	b.Bold(`{{text (get $it "heading")}}`)
	b.Action(`end`)
	b.Text(`{{text (first $it "content" "text")}}`)
	b.Action(`range $o := list (get $it "options")`)
	b.Add(docx.Paragraph{Indent: docx.Inch / 4, Runs: []docx.Run{{Text: `{{text $o}}`}}})
	b.Action(`end`)
	b.Action(`end`)
	return b
}

type asset struct {
	name string
	b    *docx.Builder
}

// Provision writes the template assets into dir. The generic verbatim
// template is optional; without it verbatim falls back to the default one.
func Provision(dir string, withGeneric bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("templates dir: %w", err)
	}
	set := []asset{
		{mode.TemplateExam, ExamTemplate()},
		{mode.TemplateDefault, DefaultTemplate()},
	}
	if withGeneric {
		set = append(set, asset{mode.TemplateGeneric, GenericTemplate()})
	}
	var written []string
	for _, t := range set {
		path := filepath.Join(dir, t.name)
		if err := t.b.WriteFile(path); err != nil {
			return written, fmt.Errorf("write %s: %w", t.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
