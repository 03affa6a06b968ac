// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"layerplane/internal/interval"
	"layerplane/internal/jobstate"
	"layerplane/pkg/api"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobCreator creates jobs for a batch of publishes.
type JobCreator interface {
	CreateJobs(ctx context.Context, names []string, iv interval.Interval) (string, map[string]jobstate.Result)
}

// MetadataPublisher publishes metadata for a batch of layers.
type MetadataPublisher interface {
	PublishMetadata(ctx context.Context, items []string) *api.BatchResponse
}

// StatusReporter builds the status snapshot of a publish.
type StatusReporter interface {
	Report(ctx context.Context, name string) (*api.PublishStatusResponse, error)
}

// Services are the domain services the handlers delegate to.
type Services struct {
	Store    Pinger
	Jobs     JobCreator
	Metadata MetadataPublisher
	Status   StatusReporter
	Logger   *slog.Logger
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store    Pinger
	jobs     JobCreator
	metadata MetadataPublisher
	status   StatusReporter
	logger   *slog.Logger
}

// New creates a new Handlers instance.
func New(s Services) *Handlers {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		store:    s.Store,
		jobs:     s.Jobs,
		metadata: s.Metadata,
		status:   s.Status,
		logger:   log,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
