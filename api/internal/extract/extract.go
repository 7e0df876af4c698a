// Package extract calls the vision model and turns its raw text into a
// validated, normalized data tree.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/mode"
	"paper-docx/api/internal/normalize"
	"paper-docx/api/internal/ocr"
	"paper-docx/api/internal/util"
)

// Response is one parsed model answer.
type Response struct {
	Raw  string
	Data map[string]any
	// Normalized is set once option labels have been cleaned.
	Normalized bool
}

type Extractor struct {
	model   ocr.Model
	cleaner *normalize.Cleaner
	schema  *jsonschema.Schema
	log     *zap.Logger
}

type Option func(*Extractor)

func WithLogger(l *zap.Logger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.log = l
		}
	}
}

func WithCleaner(c *normalize.Cleaner) Option {
	return func(x *Extractor) {
		if c != nil {
			x.cleaner = c
		}
	}
}

func New(model ocr.Model, opts ...Option) *Extractor {
	x := &Extractor{
		model:   model,
		cleaner: normalize.Default(),
		schema:  mustCompileShape(),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(x)
	}
	return x
}

// Model returns the underlying model collaborator.
func (x *Extractor) Model() ocr.Model { return x.model }

// Extract runs Parse followed by Normalize.
func (x *Extractor) Extract(ctx context.Context, image []byte, mime string, m mode.Mode) (Response, error) {
	resp, err := x.Parse(ctx, image, mime, m)
	if err != nil {
		return resp, err
	}
	resp.Data, resp.Normalized = x.Normalize(resp.Data, m)
	return resp, nil
}

// Parse calls the model once, strips code fences from its answer and decodes
// it. Errors are *common.AppError with MODEL_FAILURE or MALFORMED_RESPONSE.
func (x *Extractor) Parse(ctx context.Context, image []byte, mime string, m mode.Mode) (Response, error) {
	if len(image) == 0 {
		return Response{}, common.InvalidInput("image is empty")
	}
	if !ocr.IsConfigured(x.model) {
		err := ocr.ErrUnconfigured
		if u, ok := x.model.(ocr.Unconfigured); ok {
			err = u.Err()
		}
		x.log.Warn("extract.model.unconfigured", zap.Error(err))
		return Response{}, common.ModelFailure(err)
	}
	if strings.TrimSpace(mime) == "" {
		mime = util.DefaultImageMIME
	}

	raw, err := x.model.Generate(ctx, mode.InstructionsFor(m), image, mime)
	if err != nil {
		x.log.Warn("extract.model.failed", zap.String("model", ocr.ModelName(x.model)), zap.Error(err))
		return Response{}, common.ModelFailure(err)
	}
	if strings.TrimSpace(raw) == "" {
		return Response{Raw: raw}, common.ModelFailure(errors.New("model returned an empty response"))
	}

	clean := util.StripCodeFences(raw)
	var v any
	if err := json.Unmarshal([]byte(clean), &v); err != nil {
		x.log.Warn("extract.parse.failed", zap.String("raw", util.Truncate(raw, 512)), zap.Error(err))
		return Response{Raw: raw}, common.MalformedResponse(raw, fmt.Errorf("bad JSON: %w", err))
	}
	if err := x.schema.Validate(v); err != nil {
		x.log.Warn("extract.shape.invalid", zap.String("raw", util.Truncate(raw, 512)), zap.Error(err))
		return Response{Raw: raw}, common.MalformedResponse(raw, fmt.Errorf("json does not match schema: %w", err))
	}

	return Response{Raw: raw, Data: v.(map[string]any)}, nil
}

// Normalize cleans option labels when the mode asks for it. The second
// result reports whether the cleaner ran.
func (x *Extractor) Normalize(data map[string]any, m mode.Mode) (map[string]any, bool) {
	if !mode.ProfileFor(m).Normalize {
		return data, false
	}
	return x.cleaner.CleanTree(data), true
}
