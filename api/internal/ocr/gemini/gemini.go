package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"paper-docx/api/internal/ocr"
	"paper-docx/api/internal/util"
)

const DefaultModel = "gemini-2.5-flash"

type Engine struct {
	APIKey string
	Model  string
}

// New returns a Gemini engine, or ocr.Unconfigured when apiKey is empty.
func New(apiKey, model string) ocr.Model {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ocr.Unconfigured{Provider: "gemini", Reason: "GEMINI_API_KEY is empty"}
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{APIKey: apiKey, Model: model}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate sends the instruction text and the image as one user turn and
// returns the first text part of the answer.
func (e *Engine) Generate(ctx context.Context, instructions string, image []byte, mime string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini: client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	if mime == "" {
		mime = util.DefaultImageMIME
	}
	parts := []genai.Part{
		genai.Text(instructions),
		&genai.Blob{MIMEType: mime, Data: image},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
