// Package render binds normalized extraction data into DOCX templates and
// stores the results.
package render

import (
	"fmt"

	"go.uber.org/zap"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/mode"
	"paper-docx/api/internal/util"
)

// Document is a stored rendered artifact.
type Document struct {
	Name     string `json:"name"`
	Template string `json:"template"`
	Size     int    `json:"size"`
}

type Binder struct {
	templates TemplateStore
	outputs   OutputStore
	log       *zap.Logger
}

func NewBinder(templates TemplateStore, outputs OutputStore, log *zap.Logger) *Binder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Binder{templates: templates, outputs: outputs, log: log}
}

func (b *Binder) Outputs() OutputStore { return b.outputs }

// OutputName is Generated_<mode>_<sourceName><ext>. Same mode and source
// name give the same output name.
func OutputName(m mode.Mode, sourceName, ext string) string {
	src := util.SecureFilename(sourceName)
	if src == "" {
		src = "upload"
	}
	return fmt.Sprintf("Generated_%s_%s%s", m, src, ext)
}

// SelectTemplate returns the first template of the mode's candidate list that
// exists, or TEMPLATE_MISSING naming the last candidate.
func (b *Binder) SelectTemplate(m mode.Mode) (string, error) {
	candidates := mode.ProfileFor(m).Templates
	for _, name := range candidates {
		if b.templates.Exists(name) {
			return name, nil
		}
	}
	return "", common.TemplateMissing(candidates[len(candidates)-1])
}

// Render binds data into the mode's template and saves the document.
func (b *Binder) Render(data map[string]any, m mode.Mode, sourceName string) (Document, error) {
	tpl, err := b.SelectTemplate(m)
	if err != nil {
		b.log.Error("render.template.missing", zap.String("mode", m.String()), zap.Error(err))
		return Document{}, err
	}

	doc, err := b.templates.Render(tpl, data)
	if err != nil {
		b.log.Error("render.failed", zap.String("template", tpl), zap.Error(err))
		return Document{}, common.RenderFailed(err)
	}

	name, err := b.outputs.Save(OutputName(m, sourceName, ".docx"), doc)
	if err != nil {
		b.log.Error("render.save.failed", zap.String("template", tpl), zap.Error(err))
		return Document{}, common.RenderFailed(err)
	}
	b.log.Info("render.ok", zap.String("template", tpl), zap.String("document", name), zap.Int("size", len(doc)))
	return Document{Name: name, Template: tpl, Size: len(doc)}, nil
}
