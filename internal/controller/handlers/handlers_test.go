package handlers

import (
	"context"
	"sync"

	"layerplane/internal/interval"
	"layerplane/internal/jobstate"
	"layerplane/pkg/api"
)

// Mock services
type mockServices struct {
	pingErr error

	jobResults map[string]jobstate.Result
	batchID    string

	metaResp *api.BatchResponse

	statusResp *api.PublishStatusResponse
	statusErr  error

	// Spies (to verify arguments passed by handlers)
	mu               sync.Mutex
	capturedNames    []string
	capturedInterval interval.Interval
	capturedLayers   []string
	capturedStatus   string
}

func (m *mockServices) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockServices) CreateJobs(ctx context.Context, names []string, iv interval.Interval) (string, map[string]jobstate.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capturedNames = names
	m.capturedInterval = iv
	return m.batchID, m.jobResults
}

func (m *mockServices) PublishMetadata(ctx context.Context, items []string) *api.BatchResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capturedLayers = items
	if m.metaResp != nil {
		return m.metaResp
	}
	return api.NewBatchResponse()
}

func (m *mockServices) Report(ctx context.Context, name string) (*api.PublishStatusResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capturedStatus = name
	return m.statusResp, m.statusErr
}

func newHandlers(m *mockServices) *Handlers {
	return New(Services{Store: m, Jobs: m, Metadata: m, Status: m})
}
