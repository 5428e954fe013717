// Package pipeline provides the pipeline infrastructure for posestream.
package pipeline

import (
	"context"
)

// StageKind identifies a stage's capability. Stages run in the order of
// their kinds.
type StageKind int

const (
	KindEstimate StageKind = iota
	KindFace
	KindHand
	KindRender
	KindOutput
	KindDisplay
)

// String returns the string representation of the stage kind.
func (k StageKind) String() string {
	switch k {
	case KindEstimate:
		return "estimate"
	case KindFace:
		return "face"
	case KindHand:
		return "hand"
	case KindRender:
		return "render"
	case KindOutput:
		return "output"
	case KindDisplay:
		return "display"
	default:
		return "unknown"
	}
}

// Group is the scheduling group a stage runs in. In multi-threaded mode
// each group owns one goroutine.
type Group int

const (
	GroupProcessing Group = iota
	GroupOutput
	GroupDisplay
)

// String returns the string representation of the group.
func (g Group) String() string {
	switch g {
	case GroupProcessing:
		return "processing"
	case GroupOutput:
		return "output"
	case GroupDisplay:
		return "display"
	default:
		return "unknown"
	}
}

// Group returns the scheduling group of the kind.
func (k StageKind) Group() Group {
	switch k {
	case KindOutput:
		return GroupOutput
	case KindDisplay:
		return GroupDisplay
	default:
		return GroupProcessing
	}
}

// Stage represents a processing stage in the pipeline.
// Each stage annotates or consumes a WorkItem in place.
type Stage interface {
	// Kind returns the stage capability.
	Kind() StageKind

	// Process handles one item. It must never change the item's frame
	// number or drop it. Only unrecoverable problems are returned, as
	// *StageFatalError; per-frame issues are logged by the stage.
	Process(ctx context.Context, item *WorkItem) error
}

// Initializer is implemented by stages that need one-time setup on the
// goroutine they run on, such as loading a model.
type Initializer interface {
	Init(ctx context.Context) error
}

// Closer is implemented by stages holding resources released at teardown.
type Closer interface {
	Close() error
}

// StageFunc is a function adapter for the Stage interface.
type StageFunc struct {
	kind StageKind
	fn   func(ctx context.Context, item *WorkItem) error
}

// NewStageFunc creates a Stage of the given kind backed by fn.
func NewStageFunc(kind StageKind, fn func(ctx context.Context, item *WorkItem) error) *StageFunc {
	return &StageFunc{kind: kind, fn: fn}
}

// Kind implements Stage.
func (f *StageFunc) Kind() StageKind {
	return f.kind
}

// Process implements Stage.
func (f *StageFunc) Process(ctx context.Context, item *WorkItem) error {
	return f.fn(ctx, item)
}
