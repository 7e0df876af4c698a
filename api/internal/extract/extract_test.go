package extract

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/mode"
	"paper-docx/api/internal/normalize"
	"paper-docx/api/internal/ocr"
)

type fakeModel struct {
	out   string
	err   error
	calls int
	instr string
	mime  string
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Generate(_ context.Context, instructions string, _ []byte, mime string) (string, error) {
	f.calls++
	f.instr = instructions
	f.mime = mime
	return f.out, f.err
}

const fencedSectioned = "```json\n" +
	`{"sections":[{"roman":"I","title":"Grammar","marks_eq":"2 X 1 = 2","questions":[{"no":"1","text":"Choose the correct word","type":"mcq","options":["a) Cat","b) Dog"]}]}]}` +
	"\n```"

func TestExtractCleansOptions(t *testing.T) {
	fm := &fakeModel{out: fencedSectioned}
	resp, err := New(fm).Extract(context.Background(), []byte("img"), "", mode.StructuredForm)
	require.NoError(t, err)
	assert.True(t, resp.Normalized)
	assert.Equal(t, fencedSectioned, resp.Raw)
	assert.Equal(t, "image/jpeg", fm.mime)
	assert.Equal(t, mode.InstructionsFor(mode.StructuredForm), fm.instr)

	q := resp.Data["sections"].([]any)[0].(map[string]any)["questions"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"Cat", "Dog"}, q["options"])
	assert.Equal(t, "Choose the correct word", q["text"])
}

func TestExtractVerbatimNeverNormalizes(t *testing.T) {
	fm := &fakeModel{out: `{"items":[{"type":"original","content":"1. Keep me","options":["a) as is"]}]}`}
	// a grammar that would rewrite any non-empty string
	x := New(fm, WithCleaner(normalize.New(regexp.MustCompile(`^.`))))

	resp, err := x.Extract(context.Background(), []byte("img"), "image/png", mode.Verbatim)
	require.NoError(t, err)
	assert.False(t, resp.Normalized)
	it := resp.Data["items"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"a) as is"}, it["options"])
	assert.Equal(t, "1. Keep me", it["content"])
}

func TestExtractAcceptsAnyHeader(t *testing.T) {
	for _, raw := range []string{
		`{"header":"Class X","sections":[]}`,
		`{"header":["X","50"],"sections":[]}`,
		`{"header":null,"sections":[]}`,
	} {
		resp, err := New(&fakeModel{out: raw}).Extract(context.Background(), []byte("img"), "", mode.StructuredForm)
		require.NoError(t, err, raw)
		assert.Contains(t, resp.Data, "sections")
	}
}

func TestExtractMalformed(t *testing.T) {
	cases := map[string]string{
		"garbage":     "I could not read this image, sorry!",
		"array":       `[{"items":[]}]`,
		"both":        `{"sections":[],"items":[]}`,
		"neither":     `{"header":{"class":"X"}}`,
		"items-shape": `{"items":"not a list"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := New(&fakeModel{out: raw}).Extract(context.Background(), []byte("img"), "", mode.Mixed)
			require.Error(t, err)
			assert.True(t, common.IsCode(err, common.CodeMalformedResponse))
			assert.Equal(t, raw, common.DetailOf(err))
			assert.Nil(t, resp.Data)
		})
	}
}

func TestExtractModelFailure(t *testing.T) {
	fm := &fakeModel{err: errors.New("dial tcp: connection refused")}
	_, err := New(fm).Extract(context.Background(), []byte("img"), "", mode.Mixed)
	require.Error(t, err)
	assert.Equal(t, common.CodeModelFailure, common.CodeOf(err))
	assert.Contains(t, common.UserMessage(err), "connection refused")
	assert.Equal(t, 1, fm.calls)
}

func TestExtractEmptyResponseIsModelFailure(t *testing.T) {
	_, err := New(&fakeModel{out: "  "}).Extract(context.Background(), []byte("img"), "", mode.Mixed)
	assert.Equal(t, common.CodeModelFailure, common.CodeOf(err))
}

func TestExtractUnconfiguredFailsFast(t *testing.T) {
	x := New(ocr.Unconfigured{Provider: "gemini", Reason: "GEMINI_API_KEY is empty"})
	_, err := x.Extract(context.Background(), []byte("img"), "", mode.Mixed)
	require.Error(t, err)
	assert.Equal(t, common.CodeModelFailure, common.CodeOf(err))
	assert.ErrorIs(t, err, ocr.ErrUnconfigured)

	_, err = New(nil).Extract(context.Background(), []byte("img"), "", mode.Mixed)
	assert.ErrorIs(t, err, ocr.ErrUnconfigured)
}

func TestExtractEmptyImage(t *testing.T) {
	fm := &fakeModel{out: `{"items":[]}`}
	_, err := New(fm).Extract(context.Background(), nil, "", mode.Mixed)
	assert.Equal(t, common.CodeInvalidInput, common.CodeOf(err))
	assert.Zero(t, fm.calls)
}

func TestUnknownModeUsesMixedInstructions(t *testing.T) {
	fm := &fakeModel{out: `{"items":[]}`}
	_, err := New(fm).Extract(context.Background(), []byte("img"), "", mode.Mode("weird"))
	require.NoError(t, err)
	assert.Equal(t, mode.InstructionsFor(mode.Mixed), fm.instr)
}
