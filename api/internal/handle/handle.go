package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/pipeline"
	"paper-docx/api/internal/render"
	"paper-docx/api/internal/store"
)

// Converter runs one conversion request.
type Converter interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// History lists past conversions.
type History interface {
	Recent(ctx context.Context, limit int) ([]store.Conversion, error)
}

type Options struct {
	Timeout        time.Duration
	MaxUploadBytes int64
	// History is optional; without it /v1/conversions answers 503.
	History History
	Logger  *zap.Logger
}

type Handle struct {
	conv      Converter
	outputs   render.OutputStore
	history   History
	timeout   time.Duration
	maxUpload int64
	log       *zap.Logger
}

func New(conv Converter, outputs render.OutputStore, opts Options) *Handle {
	h := &Handle{
		conv:      conv,
		outputs:   outputs,
		history:   opts.History,
		timeout:   opts.Timeout,
		maxUpload: opts.MaxUploadBytes,
		log:       opts.Logger,
	}
	if h.timeout <= 0 {
		h.timeout = 180 * time.Second
	}
	if h.maxUpload <= 0 {
		h.maxUpload = 16 << 20
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

// Register mounts all routes on mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/upload", h.Upload)
	mux.HandleFunc("/v1/convert", h.Convert)
	mux.HandleFunc("/download/{name}", h.Download)
	mux.HandleFunc("/v1/modes", h.Modes)
	mux.HandleFunc("/v1/conversions", h.Conversions)
}

// ConvertResponse is the caller-facing result of a conversion.
type ConvertResponse struct {
	Status       string         `json:"status"`
	ID           string         `json:"id,omitempty"`
	Mode         string         `json:"mode,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	DownloadURL  string         `json:"download_url,omitempty"`
	CompanionURL string         `json:"companion_url,omitempty"`
	Code         string         `json:"code,omitempty"`
	Message      string         `json:"message,omitempty"`
}

// run executes the pipeline and writes the status envelope. Pipeline failures
// are reported with 200 and status "error".
func (h *Handle) run(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(r, h.timeout))
	defer cancel()

	res, err := h.conv.Run(ctx, req)
	if err != nil {
		writeJSON(w, http.StatusOK, ConvertResponse{
			Status:  "error",
			ID:      res.ID,
			Mode:    string(res.Mode),
			Code:    string(common.CodeOf(err)),
			Message: common.UserMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, ConvertResponse{
		Status:       "success",
		ID:           res.ID,
		Mode:         string(res.Mode),
		Data:         res.Data,
		DownloadURL:  res.Document.Name,
		CompanionURL: res.Companion,
	})
}

func requestTimeout(r *http.Request, def time.Duration) time.Duration {
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return def
}

func stripDataURL(b64 string) string {
	s := strings.TrimSpace(b64)
	if i := strings.Index(s, ","); i != -1 && strings.HasPrefix(strings.ToLower(s[:i]), "data:") {
		return s[i+1:]
	}
	return s
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
