package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrMultipleFound is returned when a lookup expected to be unique matches several rows.
	ErrMultipleFound = errors.New("multiple rows found")
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// ResourceTable names the table a status update is written to.
type ResourceTable string

const (
	TableLiveLayers        ResourceTable = "live_layers"
	TableLiveSqlViewLayers ResourceTable = "live_sqlview_layers"
	TableWmsLayers         ResourceTable = "wms_layers"
	TablePublishes         ResourceTable = "publishes"
)

// WorkspaceStore looks up workspaces.
type WorkspaceStore interface {
	// FindWorkspacesByName returns every workspace with the given name.
	FindWorkspacesByName(ctx context.Context, name string) ([]Workspace, error)
}

// ResourceStore finds the publishable resources of a set of workspaces.
type ResourceStore interface {
	FindPublish(ctx context.Context, workspaceIDs []int64, name string) (*Publish, error)

	// FindLiveLayer matches either the layer name or its underlying table.
	FindLiveLayer(ctx context.Context, workspaceIDs []int64, nameOrTable string) (*LiveLayer, error)

	FindLiveSqlViewLayer(ctx context.Context, workspaceIDs []int64, name string) (*LiveSqlViewLayer, error)

	// FindWmsLayer matches the layer's external facing kmi name.
	FindWmsLayer(ctx context.Context, workspaceIDs []int64, kmiName string) (*WmsLayer, error)

	// UpdateResourceStatus writes only status and last_publish_time.
	UpdateResourceStatus(ctx context.Context, table ResourceTable, id int64, status string, publishTime time.Time) error
}

// PublishStore handles publishes looked up without a workspace.
type PublishStore interface {
	GetPublishByName(ctx context.Context, name string) (*Publish, error)

	// SetPublishJob records the latest job of a publish, touching only job_id.
	SetPublishJob(ctx context.Context, tx DBTransaction, publishID, jobID int64) error
}

// JobStore handles the persistence of publish jobs.
type JobStore interface {
	// CreateJob inserts a new job and returns its generated id.
	CreateJob(ctx context.Context, tx DBTransaction, job *Job) (int64, error)

	// GetInFlightJob returns the newest job that has not finished.
	GetInFlightJob(ctx context.Context, publishID int64) (*Job, error)

	// GetLatestPublishedJob returns the newest job that was launched and finished.
	GetLatestPublishedJob(ctx context.Context, publishID int64) (*Job, error)
}

// SyncStatusStore reads the per slave server sync state of publishes.
type SyncStatusStore interface {
	// ListSyncStatuses returns the rows of a publish ordered by deployed job id, newest first.
	ListSyncStatuses(ctx context.Context, publishID int64) ([]PublishSyncStatus, error)
}

// PushLocker serializes repository pushes across processes.
type PushLocker interface {
	// AcquirePushLock blocks until the named lock is held and returns its release
	// function. Release reports an error when the lock could not be freed cleanly.
	AcquirePushLock(ctx context.Context, name string) (func() error, error)
}
