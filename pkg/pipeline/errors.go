package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// SourceError is a failure of the capture device. It is fatal to the
// producer and never retried.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("frame source %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// InvalidFrameError reports a structurally unusable frame.
type InvalidFrameError struct {
	FrameNumber uint64
	Reason      string
}

func (e *InvalidFrameError) Error() string {
	return fmt.Sprintf("invalid frame %d: %s", e.FrameNumber, e.Reason)
}

// StageFatalError reports that a stage cannot continue.
type StageFatalError struct {
	Stage string
	Err   error
}

func (e *StageFatalError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageFatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a StageFatalError of the given stage kind.
func Fatal(kind StageKind, err error) error {
	return &StageFatalError{Stage: kind.String(), Err: err}
}

// ConfigValidationError lists every invariant violated while building a
// configuration.
type ConfigValidationError struct {
	Problems []string
}

func (e *ConfigValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid configuration: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid configuration (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// IsCleanStop reports whether err describes a producer condition that is
// resolved by stopping cleanly rather than failing the process.
func IsCleanStop(err error) bool {
	if err == nil {
		return true
	}
	var invalid *InvalidFrameError
	return errors.As(err, &invalid)
}

// Process exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ExitCode maps the result of a run to a process exit code.
func ExitCode(err error) int {
	if IsCleanStop(err) {
		return ExitSuccess
	}
	return ExitFailure
}
