package syncstatus

import (
	"context"
	"errors"
	"testing"

	"layerplane/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(v int64) *int64 { return &v }

type fakeStore struct {
	rows []store.PublishSyncStatus
	err  error
}

func (f fakeStore) ListSyncStatuses(ctx context.Context, publishID int64) ([]store.PublishSyncStatus, error) {
	return f.rows, f.err
}

func row(server string, deployed, syncing *int64) store.PublishSyncStatus {
	return store.PublishSyncStatus{
		SlaveServer:   store.SlaveServer{Name: server},
		DeployedJobID: deployed,
		SyncJobID:     syncing,
	}
}

func names(rows []store.PublishSyncStatus) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.SlaveServer.Name)
	}
	return out
}

func TestSummarize_MismatchedDeployment(t *testing.T) {
	s := Summarize([]store.PublishSyncStatus{
		row("a", id(5), nil),
		row("b", id(5), nil),
		row("c", id(3), nil),
	})

	require.NotNil(t, s.LatestDeployedJobID())
	assert.Equal(t, int64(5), *s.LatestDeployedJobID())
	assert.Equal(t, []string{"c"}, names(s.OutOfSync))
}

func TestSummarize_InFlightSync(t *testing.T) {
	s := Summarize([]store.PublishSyncStatus{
		row("a", id(5), id(6)),
		row("b", id(5), nil),
		row("c", id(3), nil),
	})

	assert.Equal(t, []string{"a", "c"}, names(s.OutOfSync))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Nil(t, s.Latest)
	assert.Nil(t, s.LatestDeployedJobID())
	assert.Empty(t, s.OutOfSync)
}

func TestSummarize_NeverDeployedServer(t *testing.T) {
	s := Summarize([]store.PublishSyncStatus{
		row("a", id(5), nil),
		row("b", nil, nil),
	})

	assert.Equal(t, []string{"b"}, names(s.OutOfSync))
}

func TestTracker_Summarize(t *testing.T) {
	tr := NewTracker(fakeStore{rows: []store.PublishSyncStatus{row("a", id(2), nil)}})

	s, err := tr.Summarize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), *s.LatestDeployedJobID())
	assert.Empty(t, s.OutOfSync)
}

func TestTracker_StoreError(t *testing.T) {
	tr := NewTracker(fakeStore{err: errors.New("connection refused")})

	_, err := tr.Summarize(context.Background(), 1)
	assert.ErrorContains(t, err, "connection refused")
}
