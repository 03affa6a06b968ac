// Package store contains the database layer for layerplane.
package store

import "time"

// Workspace groups publishes and layers. Names are not globally unique.
type Workspace struct {
	ID   int64
	Name string
}

// Publish is a configured table/layer export definition tied to a workspace.
type Publish struct {
	ID              int64
	WorkspaceID     int64
	WorkspaceName   string
	Name            string
	Status          string
	Interval        string
	JobID           *int64 // latest job created for this publish
	LastPublishTime *time.Time
}

// LiveLayer is a layer served directly from a live datasource.
type LiveLayer struct {
	ID              int64
	WorkspaceID     int64
	WorkspaceName   string
	Name            string
	Table           string
	Status          string
	LastPublishTime *time.Time
}

// LiveSqlViewLayer is a live layer defined by a SQL view.
type LiveSqlViewLayer struct {
	ID              int64
	WorkspaceID     int64
	WorkspaceName   string
	Name            string
	Status          string
	LastPublishTime *time.Time
}

// WmsLayer is a layer exposed by an external WMS server.
// KmiName is the name it is published under.
type WmsLayer struct {
	ID              int64
	ServerID        int64
	WorkspaceID     int64
	WorkspaceName   string
	Name            string
	KmiName         string
	Status          string
	LastPublishTime *time.Time
}

// Job is one publish execution of one Publish.
type Job struct {
	ID        int64
	PublishID int64
	BatchID   string
	Interval  string
	State     string
	Message   *string
	Created   time.Time
	Launched  *time.Time
	Finished  *time.Time
}

// SlaveServer is a replica that polls for and deploys publishes.
type SlaveServer struct {
	ID           int64
	Name         string
	LastPollTime *time.Time
	LastSyncTime *time.Time
}

// PublishSyncStatus tracks what one slave server has deployed for one publish.
type PublishSyncStatus struct {
	ID            int64
	PublishID     int64
	SlaveServer   SlaveServer
	DeployedJobID *int64
	DeployTime    *time.Time
	SyncJobID     *int64
	SyncMessage   *string
	SyncTime      *time.Time
}
