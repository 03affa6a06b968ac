// Package publishstatus builds the status snapshot of a publish from its
// jobs and the sync state of the slave servers.
package publishstatus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"layerplane/internal/jobstate"
	"layerplane/internal/resource"
	"layerplane/internal/store"
	"layerplane/internal/syncstatus"
	"layerplane/pkg/api"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Store combines the repositories the reporter reads.
type Store interface {
	store.PublishStore
	store.JobStore
	store.SyncStatusStore
}

// Reporter answers publish status queries.
type Reporter struct {
	store   Store
	tracker *syncstatus.Tracker
}

// NewReporter creates a Reporter.
func NewReporter(s Store) *Reporter {
	return &Reporter{
		store:   s,
		tracker: syncstatus.NewTracker(s),
	}
}

// Report returns the status snapshot of the publish called name.
//
// An unknown publish yields only its name. A publish that is not enabled
// yields its identity and status. An enabled publish with a recorded job
// also carries the job and deployment detail.
func (r *Reporter) Report(ctx context.Context, name string) (*api.PublishStatusResponse, error) {
	ctx, span := otel.Tracer("layerplane/publishstatus").Start(ctx, "Report")
	defer span.End()
	span.SetAttributes(attribute.String("publish", name))

	publish, err := r.store.GetPublishByName(ctx, strings.ToLower(name))
	if errors.Is(err, store.ErrNotFound) {
		return &api.PublishStatusResponse{Layer: api.LayerStatus{Name: name}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load publish %q: %w", name, err)
	}

	id := publish.ID
	resp := &api.PublishStatusResponse{
		Layer: api.LayerStatus{
			ID:        &id,
			Workspace: publish.WorkspaceName,
			Name:      publish.Name,
			Status:    publish.Status,
		},
	}
	if resource.Status(publish.Status) != resource.StatusEnabled || publish.JobID == nil {
		return resp, nil
	}

	detail, err := r.detail(ctx, publish)
	if err != nil {
		return nil, err
	}
	resp.Publish = detail
	return resp, nil
}

func (r *Reporter) detail(ctx context.Context, publish *store.Publish) (*api.PublishDetail, error) {
	publishing, err := optional(r.store.GetInFlightJob(ctx, publish.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to load in-flight job of %q: %w", publish.Name, err)
	}
	published, err := optional(r.store.GetLatestPublishedJob(ctx, publish.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to load published job of %q: %w", publish.Name, err)
	}
	summary, err := r.tracker.Summarize(ctx, publish.ID)
	if err != nil {
		return nil, err
	}

	d := &api.PublishDetail{}
	if publishing != nil {
		d.PublishingJobID = &publishing.ID
		if jobstate.IsErrorState(publishing.State) {
			d.PublishingFailed = true
			d.PublishingMessage = publishing.Message
		}
	}
	if published != nil {
		d.PublishedJobID = &published.ID
		d.PublishTime = r.milliseconds(published.Finished)
	}
	if summary.Latest != nil {
		d.DeployedJobID = summary.Latest.DeployedJobID
		d.DeployTime = r.milliseconds(summary.Latest.DeployTime)
	}

	for _, st := range summary.OutOfSync {
		d.OutOfSyncServers = append(d.OutOfSyncServers, api.OutOfSyncServer{
			Server:        st.SlaveServer.Name,
			DeployedJobID: st.DeployedJobID,
			DeployTime:    r.milliseconds(st.DeployTime),
			SyncJobID:     st.SyncJobID,
			SyncMessage:   st.SyncMessage,
			SyncTime:      r.milliseconds(st.SyncTime),
			LastPollTime:  r.milliseconds(st.SlaveServer.LastPollTime),
			LastSyncTime:  r.milliseconds(st.SlaveServer.LastSyncTime),
		})
	}
	return d, nil
}

func (r *Reporter) milliseconds(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := Milliseconds(*t)
	return &ms
}

// Milliseconds returns t as milliseconds since the epoch, truncating below
// the millisecond. The result does not depend on the zone of t.
func Milliseconds(t time.Time) int64 {
	micros := t.Nanosecond() / int(time.Microsecond)
	return t.Unix()*1000 + int64(micros/1000)
}

func optional(job *store.Job, err error) (*store.Job, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return job, err
}
