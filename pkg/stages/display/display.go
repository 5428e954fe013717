// Package display implements the stage that shows rendered frames.
package display

import (
	"context"
	"fmt"
	"image"

	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// Stage presents each frame on a display. A display that cannot be opened
// disables the stage without stopping the pipeline.
type Stage struct {
	cfg     config.DisplayConfig
	display ports.Display
	logger  ports.Logger

	opened bool
	shown  int
}

// NewStage creates a new display stage.
func NewStage(cfg config.PipelineConfig, display ports.Display, logger ports.Logger) *Stage {
	return &Stage{
		cfg:     cfg.Display,
		display: display,
		logger:  logger.WithComponent("display"),
	}
}

// Kind implements pipeline.Stage.
func (s *Stage) Kind() pipeline.StageKind {
	return pipeline.KindDisplay
}

// Init opens the display.
func (s *Stage) Init(ctx context.Context) error {
	if err := s.display.Open(ctx, s.cfg.Fullscreen); err != nil {
		s.logger.Warn("Display unavailable, frames will not be shown: %v", err)
		return nil
	}
	s.opened = true
	s.logger.Debug("Display opened in %s mode", s.cfg.Mode)
	return nil
}

// Process implements pipeline.Stage.
func (s *Stage) Process(ctx context.Context, item *pipeline.WorkItem) error {
	if !s.opened {
		return nil
	}

	var frame image.Image = item.Output
	if item.Output == nil {
		frame = item.Input
	}

	info := ports.DisplayInfo{
		FrameNumber: item.FrameNumber,
		People:      item.Annotations.PeopleCount(),
	}
	if s.cfg.Verbose {
		info.Caption = fmt.Sprintf("Frame %d | %d people", item.FrameNumber, info.People)
	}

	if err := s.display.Show(ctx, frame, info); err != nil {
		s.logger.Warn("Failed to show frame %d: %v", item.FrameNumber, err)
		return nil
	}
	s.shown++
	return nil
}

// Shown returns the number of frames presented.
func (s *Stage) Shown() int {
	return s.shown
}

// Close closes the display if it was opened.
func (s *Stage) Close() error {
	if !s.opened {
		return nil
	}
	s.opened = false
	return s.display.Close()
}

var _ pipeline.Stage = (*Stage)(nil)
var _ pipeline.Initializer = (*Stage)(nil)
var _ pipeline.Closer = (*Stage)(nil)
