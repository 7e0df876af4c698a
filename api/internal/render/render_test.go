package render

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/docx"
	"paper-docx/api/internal/mode"
)

func tree(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func newBinder(t *testing.T, withGeneric bool) (*Binder, string) {
	t.Helper()
	tplDir := t.TempDir()
	_, err := Provision(tplDir, withGeneric)
	require.NoError(t, err)
	out, err := NewDirOutputs(t.TempDir())
	require.NoError(t, err)
	return NewBinder(DirTemplates{Dir: tplDir}, out, nil), tplDir
}

func docText(t *testing.T, b *Binder, name string) string {
	t.Helper()
	raw, err := b.Outputs().Fetch(name)
	require.NoError(t, err)
	text, err := docx.ReadText(raw)
	require.NoError(t, err)
	return text
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "Generated_structured-form_exam.jpg.docx", OutputName(mode.StructuredForm, "exam.jpg", ".docx"))
	assert.Equal(t, "Generated_mixed_my_scan.png.xlsx", OutputName(mode.Mixed, "../../my scan.png", ".xlsx"))
	assert.Equal(t, "Generated_verbatim_upload.docx", OutputName(mode.Verbatim, "தாள்", ".docx"))
}

func TestRenderStructuredForm(t *testing.T) {
	b, _ := newBinder(t, false)
	data := tree(t, `{"header":{"class":"X","marks":"50","date":"1.1.2025","time":"2 hrs"},
	"sections":[{"roman":"I","title":"Grammar","marks_eq":"2 X 1 = 2","questions":[
	{"no":"1","text":"Choose the correct word","type":"mcq","options":["Cat","Dog"]},
	{"no":"2","text":"Write a letter"}]}]}`)

	doc, err := b.Render(data, mode.StructuredForm, "exam.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Generated_structured-form_exam.jpg.docx", doc.Name)
	assert.Equal(t, mode.TemplateExam, doc.Template)

	text := docText(t, b, doc.Name)
	assert.Contains(t, text, "வகுப்பு: X")
	assert.Contains(t, text, "நேரம்: 2 hrs")
	assert.Contains(t, text, "I. Grammar\t2 X 1 = 2")
	assert.Contains(t, text, "1. Choose the correct word")
	assert.Contains(t, text, " அ) Cat     ஆ) Dog    ")
	assert.NotContains(t, text, "இ)")
	assert.Contains(t, text, "2. Write a letter")
	assert.NotContains(t, text, "{{")
}

func TestRenderItems(t *testing.T) {
	b, _ := newBinder(t, false)
	data := tree(t, `{"items":[
	{"type":"mcq","q_no":"3","text":"Pick","options":["x","y","z","w"]},
	{"type":"para","heading":"River","text":"Flows"},
	{"type":"original","content":"as seen"}]}`)

	doc, err := b.Render(data, mode.Mixed, "p.png")
	require.NoError(t, err)
	text := docText(t, b, doc.Name)
	assert.Contains(t, text, "3. Pick\na) x\nb) y\nc) z\nd) w\n")
	assert.Contains(t, text, "Topic: River\nFlows\n")
	assert.Contains(t, text, "as seen\n")
}

func TestStructuredFormWithoutTemplatesIsTemplateMissing(t *testing.T) {
	out, err := NewDirOutputs(t.TempDir())
	require.NoError(t, err)
	b := NewBinder(DirTemplates{Dir: t.TempDir()}, out, nil)

	_, err = b.Render(tree(t, `{"sections":[]}`), mode.StructuredForm, "exam.jpg")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeTemplateMissing))
	assert.Equal(t, mode.TemplateExam, common.DetailOf(err))

	entries, err := os.ReadDir(out.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVerbatimFallsBackToDefaultTemplate(t *testing.T) {
	b, _ := newBinder(t, false)
	doc, err := b.Render(tree(t, `{"items":[{"type":"original","content":"1. exactly this"}]}`), mode.Verbatim, "v.jpg")
	require.NoError(t, err)
	assert.Equal(t, mode.TemplateDefault, doc.Template)
	assert.Contains(t, docText(t, b, doc.Name), "1. exactly this")

	b, _ = newBinder(t, true)
	doc, err = b.Render(tree(t, `{"items":[{"type":"original","content":"kept"}]}`), mode.Verbatim, "v.jpg")
	require.NoError(t, err)
	assert.Equal(t, mode.TemplateGeneric, doc.Template)
}

func TestVerbatimWithNoTemplatesNamesDefault(t *testing.T) {
	out, err := NewDirOutputs(t.TempDir())
	require.NoError(t, err)
	_, err = NewBinder(DirTemplates{Dir: t.TempDir()}, out, nil).Render(map[string]any{"items": []any{}}, mode.Verbatim, "v.jpg")
	assert.Equal(t, mode.TemplateDefault, common.DetailOf(err))
}

type brokenTemplates struct{}

func (brokenTemplates) Exists(string) bool { return true }
func (brokenTemplates) Render(string, map[string]any) ([]byte, error) {
	return nil, errors.New("template: unexpected EOF")
}

func TestRenderFailed(t *testing.T) {
	out, err := NewDirOutputs(t.TempDir())
	require.NoError(t, err)
	_, err = NewBinder(brokenTemplates{}, out, nil).Render(map[string]any{}, mode.Mixed, "x.jpg")
	assert.True(t, common.IsCode(err, common.CodeRenderFailed))
}

func TestDirOutputs(t *testing.T) {
	out, err := NewDirOutputs(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := out.Save("same.docx", []byte{byte(i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	b, err := out.Fetch("same.docx")
	require.NoError(t, err)
	assert.Len(t, b, 1)

	name, err := out.Save("../evil.docx", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "evil.docx", name)
	_, err = os.Stat(filepath.Join(out.Dir, "evil.docx"))
	assert.NoError(t, err)

	_, err = out.Fetch("../evil.docx")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = out.Fetch("missing.docx")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := os.ReadDir(out.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRenderStructuredFormWithStringHeader(t *testing.T) {
	b, _ := newBinder(t, false)
	data := tree(t, `{"header":"Class X","sections":[{"roman":"I","title":"Grammar","questions":[{"no":"1","text":"Q"}]}]}`)

	doc, err := b.Render(data, mode.StructuredForm, "exam.jpg")
	require.NoError(t, err)
	text := docText(t, b, doc.Name)
	assert.Contains(t, text, "வகுப்பு: ")
	assert.Contains(t, text, "1. Q")
}
