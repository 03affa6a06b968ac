// Package resource resolves workspace qualified names to publishable
// resources and advances their lifecycle status.
package resource

import (
	"errors"
	"fmt"
)

// Kind identifies a resource variant.
type Kind string

const (
	KindPublish          Kind = "publish"
	KindLiveLayer        Kind = "live layer"
	KindLiveSqlViewLayer Kind = "live sqlview layer"
	KindWmsLayer         Kind = "wms layer"
)

// Status is a resource lifecycle state.
type Status string

const (
	StatusNew              Status = "New"
	StatusUpdated          Status = "Updated"
	StatusPublished        Status = "Published"
	StatusUnpublished      Status = "Unpublished"
	StatusCascadePublish   Status = "CascadePublish"
	StatusCascadeUnpublish Status = "CascadeUnpublish"
	StatusEnabled          Status = "Enabled"
	StatusDisabled         Status = "Disabled"
)

// Action is a requested lifecycle change.
type Action string

const (
	ActionPublish          Action = "publish"
	ActionUnpublish        Action = "unpublish"
	ActionCascadePublish   Action = "cascade_publish"
	ActionCascadeUnpublish Action = "cascade_unpublish"
	ActionUpdate           Action = "update"
	ActionEnable           Action = "enable"
	ActionDisable          Action = "disable"
)

// ErrInvalidTransition matches every *TransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError reports an action that is not permitted from a status.
type TransitionError struct {
	Kind    Kind
	Current Status
	Action  Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s with status %q does not support action %q", e.Kind, e.Current, e.Action)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type transitions map[Status]map[Action]Status

// layerTransitions is shared by live layers, live sqlview layers and wms layers.
var layerTransitions = transitions{
	StatusNew: {
		ActionPublish:        StatusPublished,
		ActionCascadePublish: StatusNew,
		ActionUpdate:         StatusNew,
	},
	StatusUpdated: {
		ActionPublish:        StatusPublished,
		ActionUnpublish:      StatusUnpublished,
		ActionCascadePublish: StatusCascadePublish,
		ActionUpdate:         StatusUpdated,
	},
	StatusPublished: {
		ActionPublish:          StatusPublished,
		ActionUnpublish:        StatusUnpublished,
		ActionCascadePublish:   StatusCascadePublish,
		ActionCascadeUnpublish: StatusCascadeUnpublish,
		ActionUpdate:           StatusUpdated,
	},
	StatusUnpublished: {
		ActionPublish:          StatusPublished,
		ActionUnpublish:        StatusUnpublished,
		ActionCascadeUnpublish: StatusUnpublished,
		ActionUpdate:           StatusUnpublished,
	},
	StatusCascadePublish: {
		ActionPublish:          StatusPublished,
		ActionUnpublish:        StatusUnpublished,
		ActionCascadePublish:   StatusCascadePublish,
		ActionCascadeUnpublish: StatusCascadeUnpublish,
		ActionUpdate:           StatusUpdated,
	},
	StatusCascadeUnpublish: {
		ActionPublish:          StatusPublished,
		ActionUnpublish:        StatusUnpublished,
		ActionCascadePublish:   StatusCascadePublish,
		ActionCascadeUnpublish: StatusCascadeUnpublish,
		ActionUpdate:           StatusCascadeUnpublish,
	},
}

var publishTransitions = transitions{
	StatusEnabled: {
		ActionPublish: StatusEnabled,
		ActionUpdate:  StatusEnabled,
		ActionDisable: StatusDisabled,
		ActionEnable:  StatusEnabled,
	},
	StatusDisabled: {
		ActionEnable:  StatusEnabled,
		ActionDisable: StatusDisabled,
	},
}

// NextStatus computes the status a resource of the kind moves to when the
// action is applied. It fails with a *TransitionError when the table has no
// entry for the pair.
func NextStatus(kind Kind, current Status, action Action) (Status, error) {
	var table transitions
	switch kind {
	case KindLiveLayer, KindLiveSqlViewLayer, KindWmsLayer:
		table = layerTransitions
	case KindPublish:
		table = publishTransitions
	default:
		return "", fmt.Errorf("unknown resource kind %q", kind)
	}

	next, ok := table[current][action]
	if !ok {
		return "", &TransitionError{Kind: kind, Current: current, Action: action}
	}
	return next, nil
}
