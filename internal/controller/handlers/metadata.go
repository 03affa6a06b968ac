package handlers

import (
	"encoding/json"
	"net/http"

	"layerplane/pkg/api"
)

// PublishMetadata handles POST /metajobs.
// Each layer is "workspace:name"; the repository is pushed once per request.
func (h *Handlers) PublishMetadata(w http.ResponseWriter, r *http.Request) {
	var req api.PublishMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.respondJson(w, http.StatusOK, h.metadata.PublishMetadata(r.Context(), req.Layers))
}
