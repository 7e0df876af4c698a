package handle

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"paper-docx/api/internal/mode"
	"paper-docx/api/internal/pipeline"
)

// Upload accepts a multipart form with "file" and an optional "mode".
func (h *Handle) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, "bad form: "+err.Error())
			return
		}
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if hdr.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	img, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return
	}
	if len(img) == 0 {
		writeError(w, http.StatusBadRequest, "empty file")
		return
	}

	partMIME := hdr.Header.Get("Content-Type")
	if !strings.HasPrefix(partMIME, "image/") {
		partMIME = ""
	}
	m := r.FormValue("mode")
	if m == "" {
		m = string(mode.Default)
	}
	h.log.Info("upload.received",
		zap.String("filename", hdr.Filename),
		zap.Int("size", len(img)),
		zap.String("mode", m))

	h.run(w, r, pipeline.Request{
		Image:    img,
		Filename: hdr.Filename,
		Mode:     m,
		MIME:     partMIME,
	})
}
