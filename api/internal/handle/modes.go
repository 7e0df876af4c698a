package handle

import (
	"net/http"
	"strconv"

	"paper-docx/api/internal/mode"
)

type modeInfo struct {
	Mode      string   `json:"mode"`
	Title     string   `json:"title"`
	Shape     string   `json:"shape"`
	Templates []string `json:"templates"`
	Cleaned   bool     `json:"cleans_labels"`
	Default   bool     `json:"default,omitempty"`
}

func (h *Handle) Modes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	var out []modeInfo
	for _, p := range mode.All() {
		out = append(out, modeInfo{
			Mode:      string(p.Mode),
			Title:     p.Title,
			Shape:     string(p.Shape),
			Templates: p.Templates,
			Cleaned:   p.Normalize,
			Default:   p.Mode == mode.Default,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"modes": out})
}

func (h *Handle) Conversions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "conversion history is disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.log.Sugar().Warnw("conversions.list.failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cannot list conversions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversions": rows})
}
