package jobstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"layerplane/internal/interval"
	"layerplane/internal/logger"
	"layerplane/internal/resource"
	"layerplane/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ValidationError reports a job that fails field constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Result is the soft-fail outcome of creating one job.
type Result struct {
	OK      bool
	JobID   int64
	Message string
}

// Store combines the repositories job creation needs.
type Store interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	store.PublishStore
	store.JobStore
}

// Machine creates jobs for publishes.
type Machine struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	created metric.Int64Counter
	failed  metric.Int64Counter
}

// New creates a job state machine.
func New(s Store, log *slog.Logger) *Machine {
	meter := otel.Meter("layerplane/jobstate")
	created, _ := meter.Int64Counter("layerplane.jobs.created",
		metric.WithDescription("Jobs created for publishes"))
	failed, _ := meter.Int64Counter("layerplane.jobs.failed",
		metric.WithDescription("Job creations that were refused or failed"))

	return &Machine{
		store:   s,
		logger:  log,
		now:     time.Now,
		created: created,
		failed:  failed,
	}
}

// CreateJobs creates one job per publish name. All jobs share a batch id
// generated from iv. A failure for one name never affects the others.
func (m *Machine) CreateJobs(ctx context.Context, names []string, iv interval.Interval) (string, map[string]Result) {
	ctx, span := otel.Tracer("layerplane/jobstate").Start(ctx, "CreateJobs")
	defer span.End()

	batchID := iv.BatchID(m.now())
	span.SetAttributes(attribute.String("batch_id", batchID), attribute.Int("publishes", len(names)))

	results := make(map[string]Result, len(names))
	for _, name := range names {
		results[name] = m.CreateJob(ctx, name, iv, batchID)
	}
	return batchID, results
}

// CreateJob creates a waiting job for the publish called name.
// It never returns an error: failures are reported in the Result.
func (m *Machine) CreateJob(ctx context.Context, name string, iv interval.Interval, batchID string) (result Result) {
	log := logger.FromContext(ctx, m.logger).With("publish", name, "batch_id", batchID)

	defer func() {
		if r := recover(); r != nil {
			result = Result{Message: fmt.Sprintf("panic: %v\n%s", r, debug.Stack())}
		}
		attrs := metric.WithAttributes(attribute.String("interval", string(iv)))
		if result.OK {
			m.created.Add(ctx, 1, attrs)
			log.Info("job created", "job_id", result.JobID)
			return
		}
		m.failed.Add(ctx, 1, attrs)
		log.Error("job creation failed", "error", result.Message)
	}()

	jobID, err := m.createJob(ctx, strings.ToLower(strings.TrimSpace(name)), iv, batchID)
	if err != nil {
		return Result{Message: err.Error()}
	}
	return Result{OK: true, JobID: jobID}
}

func (m *Machine) createJob(ctx context.Context, name string, iv interval.Interval, batchID string) (int64, error) {
	if !iv.Valid() {
		return 0, &ValidationError{Field: "interval", Reason: fmt.Sprintf("unknown interval %q", iv)}
	}
	if batchID == "" {
		return 0, &ValidationError{Field: "batch_id", Reason: "must not be empty"}
	}

	publish, err := m.store.GetPublishByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("publish (%s) not found", name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load publish (%s): %w", name, err)
	}
	if resource.Status(publish.Status) != resource.StatusEnabled {
		return 0, fmt.Errorf("publish (%s) is %s", name, strings.ToLower(publish.Status))
	}

	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	job := &store.Job{
		PublishID: publish.ID,
		BatchID:   batchID,
		Interval:  string(iv),
		State:     string(Initial),
		Created:   m.now().UTC(),
	}
	jobID, err := m.store.CreateJob(ctx, tx, job)
	if err != nil {
		return 0, fmt.Errorf("failed to create job for publish (%s): %w", name, err)
	}
	if err := m.store.SetPublishJob(ctx, tx, publish.ID, jobID); err != nil {
		return 0, fmt.Errorf("failed to record job %d on publish (%s): %w", jobID, name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit job for publish (%s): %w", name, err)
	}
	return jobID, nil
}
