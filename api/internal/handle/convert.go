package handle

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"paper-docx/api/internal/pipeline"
	"paper-docx/api/internal/util"
)

type ConvertRequest struct {
	ImageB64 string `json:"image_b64"`
	Filename string `json:"filename"`
	Mode     string `json:"mode"`
}

// Convert is the JSON variant of Upload: the image comes base64 encoded,
// optionally as a data: URL.
func (h *Handle) Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req ConvertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUpload*2)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}

	img, mimeFromURL, err := util.DecodeBase64MaybeDataURL(req.ImageB64)
	if err != nil {
		img, err = base64.StdEncoding.DecodeString(stripDataURL(req.ImageB64))
	}
	if err != nil || len(img) == 0 {
		writeError(w, http.StatusBadRequest, "bad image_b64")
		return
	}

	h.run(w, r, pipeline.Request{
		Image:    img,
		Filename: req.Filename,
		Mode:     req.Mode,
		MIME:     mimeFromURL,
	})
}
