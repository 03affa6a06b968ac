// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

// CreateJobsRequest is the request body for creating jobs for a batch of publishes.
// Interval defaults to "Triggered".
type CreateJobsRequest struct {
	Publishes []string `json:"publishes"`
	Interval  string   `json:"interval,omitempty"`
}

// PublishMetadataRequest is the request body for publishing layer metadata.
// Each layer is written as "workspace:name".
type PublishMetadataRequest struct {
	Layers []string `json:"layers"`
}

// Result is the outcome of one item of a batch request.
type Result struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	JobID   *int64 `json:"job_id,omitempty"`
}

// BatchResponse is the response body of the batch endpoints. It is encoded
// as one flat object: "status" plus one key per requested item.
type BatchResponse struct {
	Status  bool
	Results map[string]Result
}

// PublishStatusResponse is the status snapshot of one publish.
// Publish is omitted for unknown and non enabled publishes.
type PublishStatusResponse struct {
	Layer   LayerStatus    `json:"layer"`
	Publish *PublishDetail `json:"publish,omitempty"`
}

// LayerStatus identifies the publish. Only Name is set when the publish is unknown.
type LayerStatus struct {
	ID        *int64 `json:"id,omitempty"`
	Workspace string `json:"workspace,omitempty"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
}

// PublishDetail describes the job and deployment state of an enabled publish.
// Times are milliseconds since the epoch.
type PublishDetail struct {
	PublishingJobID   *int64            `json:"publishing_jobid"`
	PublishingFailed  bool              `json:"publishing_failed"`
	PublishingMessage *string           `json:"publishing_message"`
	PublishedJobID    *int64            `json:"published_jobid"`
	PublishTime       *int64            `json:"publish_time"`
	DeployedJobID     *int64            `json:"deploied_jobid"`
	DeployTime        *int64            `json:"deploy_time"`
	OutOfSyncServers  []OutOfSyncServer `json:"outofsync_servers,omitempty"`
}

// OutOfSyncServer is a slave server that has not deployed the latest job.
type OutOfSyncServer struct {
	Server        string  `json:"server"`
	DeployedJobID *int64  `json:"deploied_jobid"`
	DeployTime    *int64  `json:"deploy_time"`
	SyncJobID     *int64  `json:"sync_jobid"`
	SyncMessage   *string `json:"sync_message"`
	SyncTime      *int64  `json:"sync_time"`
	LastPollTime  *int64  `json:"last_poll_time"`
	LastSyncTime  *int64  `json:"last_sync_time"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
