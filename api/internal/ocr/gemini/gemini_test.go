package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-docx/api/internal/ocr"
)

func TestNewWithoutKeyIsUnconfigured(t *testing.T) {
	m := New("  ", "")
	assert.False(t, ocr.IsConfigured(m))
	_, err := m.Generate(context.Background(), "x", []byte{1}, "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewDefaultsModel(t *testing.T) {
	m := New("key", "")
	require.True(t, ocr.IsConfigured(m))
	assert.Equal(t, "gemini-2.5-flash", m.(*Engine).GetModel())
	assert.Equal(t, "gemini", m.Name())
	assert.Equal(t, "gemini-2.5-flash", ocr.ModelName(m))
}

func TestFirstText(t *testing.T) {
	assert.Equal(t, "", firstText(nil))
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{&genai.Blob{}, genai.Text(`{"items":[]}`)}}},
	}}
	assert.Equal(t, `{"items":[]}`, firstText(resp))
}
