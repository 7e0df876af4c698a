package handle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/mode"
	"paper-docx/api/internal/pipeline"
	"paper-docx/api/internal/render"
	"paper-docx/api/internal/store"
)

type fakeConverter struct {
	got      pipeline.Request
	deadline time.Duration
	err      error
}

func (f *fakeConverter) Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error) {
	f.got = req
	if d, ok := ctx.Deadline(); ok {
		f.deadline = time.Until(d)
	}
	m := mode.Resolve(req.Mode)
	if f.err != nil {
		return pipeline.Result{ID: "id-1", Mode: m}, f.err
	}
	return pipeline.Result{
		ID:       "id-1",
		Mode:     m,
		Data:     map[string]any{"items": []any{}},
		Document: render.Document{Name: render.OutputName(m, req.Filename, ".docx")},
	}, nil
}

type fakeHistory struct{}

func (fakeHistory) Recent(context.Context, int) ([]store.Conversion, error) {
	return []store.Conversion{{ID: "c1", Mode: "mixed", Status: store.StatusSucceeded}}, nil
}

func newServer(t *testing.T, conv Converter, history History) (*httptest.Server, *render.DirOutputs) {
	t.Helper()
	out, err := render.NewDirOutputs(t.TempDir())
	require.NoError(t, err)
	mux := http.NewServeMux()
	New(conv, out, Options{History: history}).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, out
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" || content != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = fw.Write(content)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, resp *http.Response) ConvertResponse {
	t.Helper()
	defer resp.Body.Close()
	var out ConvertResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestUploadSuccess(t *testing.T) {
	conv := &fakeConverter{}
	srv, _ := newServer(t, conv, nil)

	body, ct := multipartBody(t, "exam.jpg", []byte("jpeg"), map[string]string{"mode": "mak-tamil"})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/upload", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Request-Timeout", "7")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "Generated_structured-form_exam.jpg.docx", out.DownloadURL)
	assert.Equal(t, "exam.jpg", conv.got.Filename)
	assert.Equal(t, []byte("jpeg"), conv.got.Image)
	assert.Equal(t, "mak-tamil", conv.got.Mode)
	assert.LessOrEqual(t, conv.deadline, 7*time.Second)
	assert.Greater(t, conv.deadline, 5*time.Second)
}

func TestUploadDefaultsToMixed(t *testing.T) {
	conv := &fakeConverter{}
	srv, _ := newServer(t, conv, nil)

	body, ct := multipartBody(t, "p.png", []byte("png"), nil)
	resp, err := http.Post(srv.URL+"/upload", ct, body)
	require.NoError(t, err)
	out := decode(t, resp)
	assert.Equal(t, "mixed", out.Mode)
	assert.Equal(t, "mixed", conv.got.Mode)
}

func TestUploadMissingFile(t *testing.T) {
	srv, _ := newServer(t, &fakeConverter{}, nil)

	body, ct := multipartBody(t, "", nil, map[string]string{"mode": "mixed"})
	resp, err := http.Post(srv.URL+"/upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadPipelineErrorIsStatusError(t *testing.T) {
	conv := &fakeConverter{err: common.MalformedResponse("garbage", nil)}
	srv, _ := newServer(t, conv, nil)

	body, ct := multipartBody(t, "exam.jpg", []byte("jpeg"), nil)
	resp, err := http.Post(srv.URL+"/upload", ct, body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, "error", out.Status)
	assert.Equal(t, string(common.CodeMalformedResponse), out.Code)
	assert.NotEmpty(t, out.Message)
	assert.Empty(t, out.DownloadURL)
	assert.Nil(t, out.Data)
}

func TestConvertJSON(t *testing.T) {
	conv := &fakeConverter{}
	srv, _ := newServer(t, conv, nil)

	payload, _ := json.Marshal(ConvertRequest{
		ImageB64: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png")),
		Filename: "scan.png",
		Mode:     "verbatim",
	})
	resp, err := http.Post(srv.URL+"/v1/convert", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	out := decode(t, resp)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "image/png", conv.got.MIME)
	assert.Equal(t, []byte("png"), conv.got.Image)

	resp, err = http.Post(srv.URL+"/v1/convert", "application/json", bytes.NewReader([]byte(`{"image_b64":"!!!"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownload(t *testing.T) {
	srv, out := newServer(t, &fakeConverter{}, nil)
	name, err := out.Save("Generated_mixed_a.jpg.docx", []byte("DOCX"))
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/download/" + name)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), name)
	assert.Equal(t, contentTypes[".docx"], resp.Header.Get("Content-Type"))

	resp2, err := http.Get(srv.URL + "/download/missing.docx")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestModes(t *testing.T) {
	srv, _ := newServer(t, &fakeConverter{}, nil)
	resp, err := http.Get(srv.URL + "/v1/modes")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Modes []modeInfo `json:"modes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Modes, 5)
	assert.Equal(t, "structured-form", out.Modes[0].Mode)
	assert.True(t, out.Modes[4].Default)
}

func TestConversions(t *testing.T) {
	srv, _ := newServer(t, &fakeConverter{}, nil)
	resp, err := http.Get(srv.URL + "/v1/conversions")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv, _ = newServer(t, &fakeConverter{}, fakeHistory{})
	resp, err = http.Get(srv.URL + "/v1/conversions?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out struct {
		Conversions []store.Conversion `json:"conversions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Conversions, 1)
	assert.Equal(t, "c1", out.Conversions[0].ID)
}
