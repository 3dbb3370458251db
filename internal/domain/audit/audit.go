// Package audit defines the audit trail written by catalog and document
// services. Storage lives in the infrastructure layer.
package audit

import (
	"context"
	"fmt"

	"stockerp/internal/core/id"
)

// Action classifies an audited operation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
	ActionRepair  Action = "repair"
)

// Entry is one audit record. Changes carries a field diff or a small
// event payload, serialized by the recorder.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Actor      string
	Changes    map[string]any
}

// Recorder persists audit entries. Implementations participate in the
// caller's transaction when one is present in the context.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Nop discards entries. Used where auditing is disabled, e.g. in tests.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

// Diff returns per-field {old, new} pairs for keys whose values differ
// between the two states. Keys present on one side only are reported
// against nil.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if !equal(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}

func equal(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
