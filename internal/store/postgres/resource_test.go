package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"layerplane/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return &Store{db: db}, mock
}

var publishRowColumns = []string{"id", "workspace_id", "workspace_name", "name", "status", "trigger_interval", "job_id", "last_publish_time"}

func TestFindWorkspacesByName_ReturnsAllMatches(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`SELECT id, name FROM workspaces WHERE name = \$1`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "public").
			AddRow(int64(7), "public"))

	workspaces, err := s.FindWorkspacesByName(context.Background(), "public")
	if err != nil {
		t.Fatalf("FindWorkspacesByName failed: %v", err)
	}
	if len(workspaces) != 2 {
		t.Fatalf("got %d workspaces, want 2", len(workspaces))
	}
	if workspaces[1].ID != 7 {
		t.Errorf("got ID %d, want 7", workspaces[1].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindPublish_Success(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	jobID := int64(12)
	mock.ExpectQuery(`FROM publishes p`).
		WithArgs(sqlmock.AnyArg(), "roads").
		WillReturnRows(sqlmock.NewRows(publishRowColumns).
			AddRow(int64(3), int64(1), "public", "roads", "Enabled", "Daily", jobID, nil))

	pub, err := s.FindPublish(context.Background(), []int64{1}, "roads")
	if err != nil {
		t.Fatalf("FindPublish failed: %v", err)
	}
	if pub.ID != 3 || pub.WorkspaceName != "public" {
		t.Errorf("unexpected publish: %+v", pub)
	}
	if pub.JobID == nil || *pub.JobID != jobID {
		t.Errorf("got JobID %v, want %d", pub.JobID, jobID)
	}
	if pub.LastPublishTime != nil {
		t.Errorf("expected nil LastPublishTime, got %v", pub.LastPublishTime)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindPublish_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`FROM publishes p`).
		WithArgs(sqlmock.AnyArg(), "missing").
		WillReturnRows(sqlmock.NewRows(publishRowColumns))

	pub, err := s.FindPublish(context.Background(), []int64{1}, "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected store.ErrNotFound, got %v", err)
	}
	if pub != nil {
		t.Error("expected nil publish")
	}
}

func TestGetPublishByName_Multiple(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`FROM publishes p`).
		WithArgs("roads").
		WillReturnRows(sqlmock.NewRows(publishRowColumns).
			AddRow(int64(3), int64(1), "public", "roads", "Enabled", "Daily", nil, nil).
			AddRow(int64(4), int64(2), "private", "roads", "Enabled", "Daily", nil, nil))

	_, err := s.GetPublishByName(context.Background(), "roads")
	if !errors.Is(err, store.ErrMultipleFound) {
		t.Errorf("expected store.ErrMultipleFound, got %v", err)
	}
}

func TestFindLiveLayer_MatchesNameOrTable(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`l.name = \$2 OR l."table" = \$2`).
		WithArgs(sqlmock.AnyArg(), "roads_tbl").
		WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "workspace_name", "name", "table", "status", "last_publish_time"}).
			AddRow(int64(9), int64(1), "public", "roads", "roads_tbl", "Published", nil))

	layer, err := s.FindLiveLayer(context.Background(), []int64{1}, "roads_tbl")
	if err != nil {
		t.Fatalf("FindLiveLayer failed: %v", err)
	}
	if layer.Name != "roads" || layer.Table != "roads_tbl" {
		t.Errorf("unexpected layer: %+v", layer)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindWmsLayer_ByKmiName(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`l.kmi_name = \$2`).
		WithArgs(sqlmock.AnyArg(), "cadastre").
		WillReturnRows(sqlmock.NewRows([]string{"id", "server_id", "workspace_id", "workspace_name", "name", "kmi_name", "status", "last_publish_time"}).
			AddRow(int64(5), int64(2), int64(1), "public", "CADASTRE_LAYER", "cadastre", "New", nil))

	layer, err := s.FindWmsLayer(context.Background(), []int64{1}, "cadastre")
	if err != nil {
		t.Fatalf("FindWmsLayer failed: %v", err)
	}
	if layer.ServerID != 2 || layer.KmiName != "cadastre" {
		t.Errorf("unexpected layer: %+v", layer)
	}
}

func TestUpdateResourceStatus_TouchesOnlyStatusAndPublishTime(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	now := time.Now()
	mock.ExpectExec(`UPDATE live_layers SET status = \$1, last_publish_time = \$2 WHERE id = \$3`).
		WithArgs("Published", now, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateResourceStatus(context.Background(), store.TableLiveLayers, 9, "Published", now)
	if err != nil {
		t.Fatalf("UpdateResourceStatus failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateResourceStatus_UnknownTable(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	err := s.UpdateResourceStatus(context.Background(), store.ResourceTable("users"), 1, "Published", time.Now())
	if err == nil {
		t.Error("expected error for unknown table")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected queries: %v", err)
	}
}

func TestUpdateResourceStatus_RowGone(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectExec(`UPDATE wms_layers`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateResourceStatus(context.Background(), store.TableWmsLayers, 1, "Published", time.Now())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected store.ErrNotFound, got %v", err)
	}
}

func TestAcquirePushLock_ReleasesOnDedicatedConnection(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectExec(`SELECT pg_advisory_lock`).
		WithArgs("meta_resource").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).
		WithArgs("meta_resource").
		WillReturnResult(sqlmock.NewResult(0, 0))

	release, err := s.AcquirePushLock(context.Background(), "meta_resource")
	if err != nil {
		t.Fatalf("AcquirePushLock failed: %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if stats := s.db.Stats(); stats.OpenConnections != 1 || stats.Idle != 1 {
		t.Errorf("expected the connection back in the pool, got open=%d idle=%d", stats.OpenConnections, stats.Idle)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAcquirePushLock_FailedUnlockDiscardsConnection(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectExec(`SELECT pg_advisory_lock`).
		WithArgs("meta_resource").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).
		WithArgs("meta_resource").
		WillReturnError(errors.New("i/o timeout"))

	release, err := s.AcquirePushLock(context.Background(), "meta_resource")
	if err != nil {
		t.Fatalf("AcquirePushLock failed: %v", err)
	}

	err = release()
	if err == nil || !strings.Contains(err.Error(), "i/o timeout") {
		t.Errorf("expected unlock error, got %v", err)
	}
	if stats := s.db.Stats(); stats.OpenConnections != 0 || stats.Idle != 0 {
		t.Errorf("expected the locked session to be discarded, got open=%d idle=%d", stats.OpenConnections, stats.Idle)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAcquirePushLock_Error(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectExec(`SELECT pg_advisory_lock`).
		WillReturnError(errors.New("connection reset"))

	if _, err := s.AcquirePushLock(context.Background(), "meta_resource"); err == nil {
		t.Error("expected error, got nil")
	}
}
