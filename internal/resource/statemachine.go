package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"layerplane/internal/store"
)

// ErrExport matches every *ExportError.
var ErrExport = errors.New("publish meta data failed")

// ExportError reports a failed metadata export.
type ExportError struct {
	Publish string
	Err     error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export of %s failed: %v", e.Publish, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) Is(target error) bool { return target == ErrExport }

// Exporter exports the metadata of a publish entry.
type Exporter interface {
	Export(ctx context.Context, publish *store.Publish) error
}

// TransitionFunc computes the next status of a resource.
type TransitionFunc func(kind Kind, current Status, action Action) (Status, error)

// StateMachine applies lifecycle actions to resources.
type StateMachine struct {
	store    store.ResourceStore
	exporter Exporter
	next     TransitionFunc
	now      func() time.Time
}

// NewStateMachine creates a state machine using the built-in transition tables.
func NewStateMachine(rs store.ResourceStore, exporter Exporter) *StateMachine {
	return &StateMachine{
		store:    rs,
		exporter: exporter,
		next:     NextStatus,
		now:      time.Now,
	}
}

// WithTransitions replaces the transition function.
func (m *StateMachine) WithTransitions(fn TransitionFunc) *StateMachine {
	m.next = fn
	return m
}

// Advance applies action to res and returns its new status.
//
// Publishing a publish entry exports its metadata instead of changing its
// status. Every other action persists the new status and the change time in
// a single update of those two columns.
func (m *StateMachine) Advance(ctx context.Context, res Resource, action Action) (Status, error) {
	if p, ok := res.(Publish); ok && action == ActionPublish {
		if err := m.exporter.Export(ctx, p.Publish); err != nil {
			return "", &ExportError{Publish: p.Publish.Name, Err: err}
		}
		return res.Status(), nil
	}

	next, err := m.next(res.Kind(), res.Status(), action)
	if err != nil {
		return "", err
	}

	if err := m.store.UpdateResourceStatus(ctx, res.table(), res.ID(), string(next), m.now()); err != nil {
		return "", fmt.Errorf("failed to save status of %s %s:%s: %w", res.Kind(), res.Workspace(), res.Name(), err)
	}
	res.setStatus(next)
	return next, nil
}
