package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"layerplane/internal/store"
)

var (
	// ErrWorkspaceNotFound is returned when no workspace carries the requested name.
	ErrWorkspaceNotFound = errors.New("workspace does not exist")

	// ErrNotFound is returned when no resource kind matches the requested name.
	ErrNotFound = errors.New("resource does not exist")
)

// Resource is a publishable resource of any kind.
type Resource interface {
	Kind() Kind
	ID() int64
	Workspace() string
	Name() string
	Status() Status

	table() store.ResourceTable
	setStatus(Status)
}

// Publish wraps a publish entry.
type Publish struct{ *store.Publish }

func (p Publish) Kind() Kind                 { return KindPublish }
func (p Publish) ID() int64                  { return p.Publish.ID }
func (p Publish) Workspace() string          { return p.WorkspaceName }
func (p Publish) Name() string               { return p.Publish.Name }
func (p Publish) Status() Status             { return Status(p.Publish.Status) }
func (p Publish) table() store.ResourceTable { return store.TablePublishes }
func (p Publish) setStatus(s Status)         { p.Publish.Status = string(s) }

// LiveLayer wraps a live layer.
type LiveLayer struct{ *store.LiveLayer }

func (l LiveLayer) Kind() Kind                 { return KindLiveLayer }
func (l LiveLayer) ID() int64                  { return l.LiveLayer.ID }
func (l LiveLayer) Workspace() string          { return l.WorkspaceName }
func (l LiveLayer) Name() string               { return l.LiveLayer.Name }
func (l LiveLayer) Status() Status             { return Status(l.LiveLayer.Status) }
func (l LiveLayer) table() store.ResourceTable { return store.TableLiveLayers }
func (l LiveLayer) setStatus(s Status)         { l.LiveLayer.Status = string(s) }

// LiveSqlViewLayer wraps a live sqlview layer.
type LiveSqlViewLayer struct{ *store.LiveSqlViewLayer }

func (l LiveSqlViewLayer) Kind() Kind                 { return KindLiveSqlViewLayer }
func (l LiveSqlViewLayer) ID() int64                  { return l.LiveSqlViewLayer.ID }
func (l LiveSqlViewLayer) Workspace() string          { return l.WorkspaceName }
func (l LiveSqlViewLayer) Name() string               { return l.LiveSqlViewLayer.Name }
func (l LiveSqlViewLayer) Status() Status             { return Status(l.LiveSqlViewLayer.Status) }
func (l LiveSqlViewLayer) table() store.ResourceTable { return store.TableLiveSqlViewLayers }
func (l LiveSqlViewLayer) setStatus(s Status)         { l.LiveSqlViewLayer.Status = string(s) }

// WmsLayer wraps a wms layer. Its name is the kmi name.
type WmsLayer struct{ *store.WmsLayer }

func (l WmsLayer) Kind() Kind                 { return KindWmsLayer }
func (l WmsLayer) ID() int64                  { return l.WmsLayer.ID }
func (l WmsLayer) Workspace() string          { return l.WorkspaceName }
func (l WmsLayer) Name() string               { return l.KmiName }
func (l WmsLayer) Status() Status             { return Status(l.WmsLayer.Status) }
func (l WmsLayer) table() store.ResourceTable { return store.TableWmsLayers }
func (l WmsLayer) setStatus(s Status)         { l.WmsLayer.Status = string(s) }

// Finder looks up one kind of resource. It returns store.ErrNotFound when
// nothing matches so the next finder can be tried.
type Finder interface {
	Kind() Kind
	Find(ctx context.Context, workspaceIDs []int64, name string) (Resource, error)
}

type finderFunc struct {
	kind Kind
	find func(ctx context.Context, workspaceIDs []int64, name string) (Resource, error)
}

func (f finderFunc) Kind() Kind { return f.kind }

func (f finderFunc) Find(ctx context.Context, workspaceIDs []int64, name string) (Resource, error) {
	return f.find(ctx, workspaceIDs, name)
}

// Finders returns the finders for every kind in resolution priority order.
func Finders(rs store.ResourceStore) []Finder {
	return []Finder{
		finderFunc{KindPublish, func(ctx context.Context, ids []int64, name string) (Resource, error) {
			p, err := rs.FindPublish(ctx, ids, name)
			if err != nil {
				return nil, err
			}
			return Publish{p}, nil
		}},
		finderFunc{KindLiveLayer, func(ctx context.Context, ids []int64, name string) (Resource, error) {
			l, err := rs.FindLiveLayer(ctx, ids, name)
			if err != nil {
				return nil, err
			}
			return LiveLayer{l}, nil
		}},
		finderFunc{KindLiveSqlViewLayer, func(ctx context.Context, ids []int64, name string) (Resource, error) {
			l, err := rs.FindLiveSqlViewLayer(ctx, ids, name)
			if err != nil {
				return nil, err
			}
			return LiveSqlViewLayer{l}, nil
		}},
		finderFunc{KindWmsLayer, func(ctx context.Context, ids []int64, name string) (Resource, error) {
			l, err := rs.FindWmsLayer(ctx, ids, name)
			if err != nil {
				return nil, err
			}
			return WmsLayer{l}, nil
		}},
	}
}

// Resolver finds the resource a workspace qualified name refers to.
type Resolver struct {
	workspaces store.WorkspaceStore
	finders    []Finder
}

// NewResolver creates a resolver trying publishes, live layers, live sqlview
// layers and wms layers in that order.
func NewResolver(ws store.WorkspaceStore, rs store.ResourceStore) *Resolver {
	return &Resolver{workspaces: ws, finders: Finders(rs)}
}

// Resolve returns the first resource matching name in any workspace called
// workspaceName. Both names are compared in lower case.
func (r *Resolver) Resolve(ctx context.Context, workspaceName, name string) (Resource, error) {
	workspaceName = strings.ToLower(strings.TrimSpace(workspaceName))
	name = strings.ToLower(strings.TrimSpace(name))

	workspaces, err := r.workspaces.FindWorkspacesByName(ctx, workspaceName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up workspace %q: %w", workspaceName, err)
	}
	if len(workspaces) == 0 {
		return nil, ErrWorkspaceNotFound
	}

	ids := make([]int64, len(workspaces))
	for i, ws := range workspaces {
		ids[i] = ws.ID
	}

	for _, f := range r.finders {
		res, err := f.Find(ctx, ids, name)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to find %s %s:%s: %w", f.Kind(), workspaceName, name, err)
		}
	}
	return nil, ErrNotFound
}
