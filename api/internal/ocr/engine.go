package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Model is a vision-capable language model: image + instructions -> text.
// Implementations make exactly one attempt per call.
type Model interface {
	Name() string
	Generate(ctx context.Context, instructions string, image []byte, mime string) (string, error)
}

// ErrUnconfigured is returned by Unconfigured.Generate.
var ErrUnconfigured = errors.New("model is not configured")

// Unconfigured stands in for a provider whose credentials are missing.
type Unconfigured struct {
	Provider string
	Reason   string
}

func (u Unconfigured) Name() string { return u.Provider }

func (u Unconfigured) Generate(context.Context, string, []byte, string) (string, error) {
	return "", u.Err()
}

func (u Unconfigured) Err() error {
	if u.Reason == "" {
		return ErrUnconfigured
	}
	return fmt.Errorf("%w: %s", ErrUnconfigured, u.Reason)
}

// IsConfigured reports whether m can be called at all.
func IsConfigured(m Model) bool {
	switch m.(type) {
	case nil, Unconfigured, *Unconfigured:
		return false
	}
	return true
}

// ModelName is the provider's model id when it reports one, else its Name.
func ModelName(m Model) string {
	if m == nil {
		return ""
	}
	if g, ok := m.(interface{ GetModel() string }); ok && g.GetModel() != "" {
		return g.GetModel()
	}
	return m.Name()
}

type Engines struct {
	Gemini Model
	OpenAI Model
}

// GetEngine picks the provider by name; empty selects Gemini.
func (e *Engines) GetEngine(llmName string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(llmName)) {
	case "", "gemini":
		return orUnconfigured(e.Gemini, "gemini"), nil
	case "gpt", "openai":
		return orUnconfigured(e.OpenAI, "gpt"), nil
	default:
		return nil, fmt.Errorf("unknown llm_name %q; use 'gemini' or 'gpt'", llmName)
	}
}

func orUnconfigured(m Model, name string) Model {
	if m == nil {
		return Unconfigured{Provider: name, Reason: name + " engine is not set up"}
	}
	return m
}
