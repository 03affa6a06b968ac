package handlers

import (
	"encoding/json"
	"net/http"

	"layerplane/internal/interval"
	"layerplane/internal/logger"
	"layerplane/pkg/api"
)

// CreateJobs handles POST /jobs.
// It creates one job per requested publish; items fail independently.
func (h *Handlers) CreateJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	iv := interval.Triggered
	if req.Interval != "" {
		parsed, err := interval.Parse(req.Interval)
		if err != nil {
			h.httpError(w, err.Error(), http.StatusBadRequest)
			return
		}
		iv = parsed
	}

	batchID, results := h.jobs.CreateJobs(ctx, req.Publishes, iv)

	resp := api.NewBatchResponse()
	for name, res := range results {
		item := api.Result{Status: res.OK, Message: res.Message}
		if res.OK {
			jobID := res.JobID
			item.JobID = &jobID
		}
		resp.Set(name, item)
	}

	logger.FromContext(ctx, h.logger).Info("jobs created",
		"batch_id", batchID, "publishes", len(req.Publishes), "status", resp.Status)

	w.Header().Set("X-Batch-ID", batchID)
	h.respondJson(w, http.StatusOK, resp)
}
