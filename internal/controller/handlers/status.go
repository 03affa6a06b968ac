package handlers

import (
	"net/http"

	"layerplane/internal/logger"
)

// GetPublishStatus handles GET /publishs/{name}.
// An unknown publish is not an error: the snapshot only carries its name.
func (h *Handlers) GetPublishStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := r.PathValue("name")
	if name == "" {
		h.httpError(w, "Publish name is required", http.StatusBadRequest)
		return
	}

	resp, err := h.status.Report(ctx, name)
	if err != nil {
		logger.FromContext(ctx, h.logger).Error("failed to report publish status", "publish", name, "error", err)
		h.httpError(w, "Failed to load publish status", http.StatusInternalServerError)
		return
	}
	h.respondJson(w, http.StatusOK, resp)
}
