package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paper-docx/api/internal/ocr"
	"paper-docx/api/internal/util"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
)

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

// New returns an OpenAI chat/completions engine, or ocr.Unconfigured when key is empty.
func New(key, model, baseURL string) ocr.Model {
	key = strings.TrimSpace(key)
	if key == "" {
		return ocr.Unconfigured{Provider: "gpt", Reason: "OPENAI_API_KEY is empty"}
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Engine{
		APIKey:  key,
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Generate(ctx context.Context, instructions string, image []byte, mime string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}
	if mime == "" {
		mime = util.DefaultImageMIME
	}
	dataURL := util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(image))

	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": instructions},
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": "Transcribe this image. Return raw JSON only."},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
				},
			},
		},
		"temperature": 0,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openai: decode: %w", err)
	}
	if len(raw.Choices) == 0 || strings.TrimSpace(raw.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: empty response")
	}
	return raw.Choices[0].Message.Content, nil
}
