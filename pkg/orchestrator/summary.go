package orchestrator

import (
	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/summarizer"
)

// Summary builds the end-of-run summary of result under cfg. runErr is
// the error Run returned, if any.
func Summary(cfg config.PipelineConfig, result RunResult, runErr error) *summarizer.Summary {
	out := summarizer.OutputInfo{
		JSONDir:     cfg.Output.JSONDir,
		KeypointDir: cfg.Output.KeypointDir,
		ImagesDir:   cfg.Output.ImagesDir,
		HeatmapsDir: cfg.Output.HeatmapsDir,
		VideoPath:   cfg.Output.VideoPath,
	}
	if cfg.Output.UDPHost != "" {
		out.UDPAddr = cfg.Output.UDPAddr()
	}
	if cfg.Display.Mode != config.DisplayNone {
		out.DisplayAddr = cfg.Display.Addr
	}

	return summarizer.NewBuilder().
		WithRun(result.StartedAt, result.FinishedAt, result.StopReason, runErr).
		WithFrames(summarizer.FrameInfo{
			Accepted:  result.Accepted,
			Processed: result.Processed,
			Dropped:   result.Dropped,
			LastFrame: result.LastFrame,
		}).
		WithSettings(summarizer.Settings{
			Source:           string(cfg.Producer.Source),
			InputWidth:       cfg.Producer.Width,
			InputHeight:      cfg.Producer.Height,
			FPS:              cfg.Producer.FPS,
			Model:            string(cfg.Pose.Model),
			NetResolution:    cfg.Pose.NetResolution.String(),
			OutputResolution: cfg.Pose.OutputResolution.String(),
			Body:             cfg.Pose.Enabled,
			Face:             cfg.Face.Enabled,
			Hand:             cfg.Hand.Enabled,
			MultiThread:      !cfg.Execution.DisableMultiThread,
			QueueSize:        cfg.Execution.QueueSize,
		}).
		WithOutputs(out).
		Build()
}
