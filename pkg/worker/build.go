package worker

import (
	"fmt"
	"io"

	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
	"github.com/user/posestream/pkg/stages/display"
	"github.com/user/posestream/pkg/stages/estimate"
	"github.com/user/posestream/pkg/stages/face"
	"github.com/user/posestream/pkg/stages/hand"
	"github.com/user/posestream/pkg/stages/output"
	"github.com/user/posestream/pkg/stages/render"
)

// Collaborators are the adapters stages are built from. Only the ones the
// configuration needs have to be set.
type Collaborators struct {
	PoseEstimator ports.PoseEstimator
	FaceEstimator ports.RegionEstimator
	HandEstimator ports.RegionEstimator
	Renderer      ports.Renderer
	FileSystem    ports.FileSystem

	// NewSink opens an artifact sink rooted at dir.
	NewSink func(dir string) ports.ArtifactSink

	VideoEncoder ports.VideoEncoder
	Datagram     ports.DatagramSender
	Display      ports.Display

	Progress    io.Writer
	ProgressTTY bool
}

// BuildStages creates the stages cfg enables, in pipeline order.
func BuildStages(cfg config.PipelineConfig, c Collaborators, logger ports.Logger) ([]pipeline.Stage, error) {
	var stages []pipeline.Stage

	if cfg.Pose.Enabled {
		if c.PoseEstimator == nil {
			return nil, missing(pipeline.KindEstimate, "pose estimator")
		}
		stages = append(stages, estimate.NewStage(cfg, c.PoseEstimator, logger))
	}
	if cfg.Face.Enabled {
		if c.FaceEstimator == nil {
			return nil, missing(pipeline.KindFace, "face estimator")
		}
		stages = append(stages, face.NewStage(cfg, c.FaceEstimator, logger))
	}
	if cfg.Hand.Enabled {
		if c.HandEstimator == nil {
			return nil, missing(pipeline.KindHand, "hand estimator")
		}
		stages = append(stages, hand.NewStage(cfg, c.HandEstimator, logger))
	}

	if needsRender(cfg) {
		if c.Renderer == nil {
			return nil, missing(pipeline.KindRender, "renderer")
		}
		stages = append(stages, render.NewStage(cfg, c.Renderer, logger))
	}

	if needsOutput(cfg.Output) {
		w, err := writers(cfg.Output, c)
		if err != nil {
			return nil, err
		}
		stages = append(stages, output.NewStage(cfg, w, logger))
	}

	if cfg.Display.Mode != config.DisplayNone {
		if c.Display == nil {
			return nil, missing(pipeline.KindDisplay, "display")
		}
		stages = append(stages, display.NewStage(cfg, c.Display, logger))
	}
	return stages, nil
}

// needsRender reports whether something draws and something consumes the
// rendered image.
func needsRender(cfg config.PipelineConfig) bool {
	consumed := cfg.Output.ImagesDir != "" || cfg.Output.VideoPath != "" || cfg.Display.Mode != config.DisplayNone
	if !consumed {
		return false
	}
	draws := (cfg.Pose.Enabled && cfg.Pose.RenderMode != config.RenderNone) ||
		(cfg.Face.Enabled && cfg.Face.RenderMode != config.RenderNone) ||
		(cfg.Hand.Enabled && cfg.Hand.RenderMode != config.RenderNone) ||
		cfg.Pose.PartToShow > 0
	resized := cfg.Pose.OutputResolution.X > 0 || cfg.Pose.OutputResolution.Y > 0
	return draws || resized
}

func needsOutput(o config.OutputConfig) bool {
	return o.JSONDir != "" || o.KeypointDir != "" || o.ImagesDir != "" || o.HeatmapsDir != "" ||
		o.VideoPath != "" || o.UDPHost != "" || o.CLIVerbose >= 1
}

func writers(o config.OutputConfig, c Collaborators) (output.Writers, error) {
	w := output.Writers{
		Progress:    c.Progress,
		ProgressTTY: c.ProgressTTY,
	}

	dirs := []struct {
		dir  string
		dest *ports.ArtifactSink
	}{
		{o.KeypointDir, &w.Keypoints},
		{o.JSONDir, &w.JSON},
		{o.ImagesDir, &w.Images},
		{o.HeatmapsDir, &w.Heatmaps},
	}
	for _, d := range dirs {
		if d.dir == "" {
			continue
		}
		if c.NewSink == nil {
			return w, missing(pipeline.KindOutput, "artifact sink")
		}
		*d.dest = c.NewSink(d.dir)
	}

	if o.VideoPath != "" {
		if c.VideoEncoder == nil || c.FileSystem == nil {
			return w, missing(pipeline.KindOutput, "video encoder and file system")
		}
		w.Video = c.VideoEncoder
		w.FS = c.FileSystem
	}
	if o.UDPHost != "" {
		if c.Datagram == nil {
			return w, missing(pipeline.KindOutput, "datagram sender")
		}
		w.UDP = c.Datagram
	}
	return w, nil
}

func missing(kind pipeline.StageKind, what string) error {
	return fmt.Errorf("worker: %s stage requires a %s", kind, what)
}
