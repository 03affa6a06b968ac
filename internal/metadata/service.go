// Package metadata publishes the metadata of layers and pushes the exported
// files to the metadata repository in one batch.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"layerplane/internal/logger"
	"layerplane/internal/resource"
	"layerplane/internal/store"
	"layerplane/pkg/api"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PushOwner names the lock held for the duration of a metadata batch.
const PushOwner = "meta_resource"

const succeed = "Succeed."

// Pusher pushes the exported metadata to the repository.
type Pusher interface {
	Push(ctx context.Context, owner string) error
}

// Resolver finds the resource an item refers to.
type Resolver interface {
	Resolve(ctx context.Context, workspace, name string) (resource.Resource, error)
}

// Advancer applies a lifecycle action to a resource.
type Advancer interface {
	Advance(ctx context.Context, res resource.Resource, action resource.Action) (resource.Status, error)
}

// Service publishes metadata for batches of layers.
type Service struct {
	resolver Resolver
	advancer Advancer
	locker   store.PushLocker
	pusher   Pusher
	logger   *slog.Logger

	published    metric.Int64Counter
	failed       metric.Int64Counter
	pushFailures metric.Int64Counter
}

// NewService creates a metadata Service.
func NewService(resolver Resolver, advancer Advancer, locker store.PushLocker, pusher Pusher, log *slog.Logger) *Service {
	meter := otel.Meter("layerplane/metadata")
	published, _ := meter.Int64Counter("layerplane.metadata.published",
		metric.WithDescription("Layers whose metadata was published"))
	failed, _ := meter.Int64Counter("layerplane.metadata.failed",
		metric.WithDescription("Layers whose metadata publish failed"))
	pushFailures, _ := meter.Int64Counter("layerplane.repository.push.failures",
		metric.WithDescription("Failed pushes to the metadata repository"))

	return &Service{
		resolver:     resolver,
		advancer:     advancer,
		locker:       locker,
		pusher:       pusher,
		logger:       log,
		published:    published,
		failed:       failed,
		pushFailures: pushFailures,
	}
}

// PublishMetadata publishes every "workspace:name" item and then pushes the
// repository once. Items fail independently. When the push fails every item
// that had succeeded is marked failed, since nothing reached the repository.
func (s *Service) PublishMetadata(ctx context.Context, items []string) *api.BatchResponse {
	ctx, span := otel.Tracer("layerplane/metadata").Start(ctx, "PublishMetadata")
	defer span.End()
	span.SetAttributes(attribute.Int("layers", len(items)))

	log := logger.FromContext(ctx, s.logger)
	resp := api.NewBatchResponse()

	release, err := s.locker.AcquirePushLock(ctx, PushOwner)
	if err != nil {
		log.Error("failed to acquire push lock", "error", err)
		resp.Status = false
		for _, item := range items {
			resp.Set(item, api.Result{Message: fmt.Sprintf("Acquire push lock failed!%v", err)})
		}
		return resp
	}
	defer func() {
		if err := release(); err != nil {
			log.Error("failed to release push lock", "error", err)
		}
	}()

	for _, item := range items {
		r := s.publish(ctx, item)
		if !r.Status {
			log.Error("publish metadata failed", "layer", item, "error", r.Message)
		}
		resp.Set(item, r)
	}

	if err := s.pusher.Push(ctx, PushOwner); err != nil {
		s.pushFailures.Add(ctx, 1)
		log.Error("push to repository failed", "error", err)
		resp.Status = false
		for _, item := range items {
			if r := resp.Results[item]; r.Status {
				resp.Results[item] = api.Result{Message: fmt.Sprintf("Push to repository failed!%v", err)}
			}
		}
	}

	for _, r := range resp.Results {
		if r.Status {
			s.published.Add(ctx, 1)
		} else {
			s.failed.Add(ctx, 1)
		}
	}
	return resp
}

func (s *Service) publish(ctx context.Context, item string) api.Result {
	workspace, name, ok := strings.Cut(item, ":")
	if !ok || workspace == "" || name == "" || strings.Contains(name, ":") {
		return api.Result{Message: fmt.Sprintf("Invalid layer %q, expected workspace:name.", item)}
	}

	res, err := s.resolver.Resolve(ctx, workspace, name)
	switch {
	case errors.Is(err, resource.ErrWorkspaceNotFound):
		return api.Result{Message: "Workspace does not exist."}
	case errors.Is(err, resource.ErrNotFound):
		return api.Result{Message: "Does not exist."}
	case err != nil:
		return api.Result{Message: err.Error()}
	}

	if _, err := s.advancer.Advance(ctx, res, resource.ActionPublish); err != nil {
		var exportErr *resource.ExportError
		if errors.As(err, &exportErr) {
			err = exportErr.Err
		}
		return api.Result{Message: fmt.Sprintf("%s!%v", failurePrefix(res.Kind()), err)}
	}
	return api.Result{Status: true, Message: succeed}
}

func failurePrefix(kind resource.Kind) string {
	if kind == resource.KindPublish {
		return "Publish meta data failed"
	}
	return fmt.Sprintf("Publish %s failed", kind)
}
