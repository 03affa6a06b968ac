// Package syncstatus reports whether the slave servers deployed the latest
// job of a publish.
package syncstatus

import (
	"context"
	"fmt"

	"layerplane/internal/store"
)

// Summary is the sync state of one publish across its slave servers.
type Summary struct {
	// Statuses are ordered by deployed job id, newest first.
	Statuses []store.PublishSyncStatus

	// Latest is the newest row, nil when nothing has been deployed yet.
	Latest *store.PublishSyncStatus

	OutOfSync []store.PublishSyncStatus
}

// LatestDeployedJobID returns the newest deployed job id, or nil.
func (s Summary) LatestDeployedJobID() *int64 {
	if s.Latest == nil {
		return nil
	}
	return s.Latest.DeployedJobID
}

// Tracker reads sync statuses from the store.
type Tracker struct {
	store store.SyncStatusStore
}

// NewTracker creates a Tracker.
func NewTracker(s store.SyncStatusStore) *Tracker {
	return &Tracker{store: s}
}

// Summarize loads the sync rows of a publish and works out which servers are out of sync.
func (t *Tracker) Summarize(ctx context.Context, publishID int64) (Summary, error) {
	statuses, err := t.store.ListSyncStatuses(ctx, publishID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list sync statuses of publish %d: %w", publishID, err)
	}
	return Summarize(statuses), nil
}

// Summarize computes the summary of rows already ordered newest deployed job first.
// A row is out of sync when a sync is in flight or it deployed another job
// than the newest row.
func Summarize(statuses []store.PublishSyncStatus) Summary {
	s := Summary{Statuses: statuses}
	if len(statuses) == 0 {
		return s
	}
	s.Latest = &statuses[0]
	latest := s.Latest.DeployedJobID

	for _, st := range statuses {
		if st.SyncJobID != nil || !sameJob(st.DeployedJobID, latest) {
			s.OutOfSync = append(s.OutOfSync, st)
		}
	}
	return s
}

func sameJob(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
