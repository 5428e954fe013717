// Package output implements the stage that persists and streams results.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// Writers holds the destinations of the output stage. Nil fields disable
// the corresponding writer.
type Writers struct {
	Keypoints ports.ArtifactSink
	JSON      ports.ArtifactSink
	Images    ports.ArtifactSink
	Heatmaps  ports.ArtifactSink

	// Video frames are encoded as they arrive and the container is
	// written to VideoPath through FS when the stage closes.
	Video ports.VideoEncoder
	FS    ports.FileSystem

	UDP ports.DatagramSender

	// Progress receives cli_verbose lines. ProgressTTY rewrites a single
	// line instead of appending.
	Progress    io.Writer
	ProgressTTY bool
}

// Stats counts what the stage wrote.
type Stats struct {
	Frames      int
	Keypoints   int
	Images      int
	Heatmaps    int
	VideoFrames int
	Datagrams   int
	Failures    int
}

// Stage writes keypoints, images, heatmaps and video for each frame.
type Stage struct {
	out    config.OutputConfig
	pose   config.PoseConfig
	w      Writers
	logger ports.Logger

	videoStarted bool
	videoFailed  bool
	stats        Stats
}

// NewStage creates a new output stage.
func NewStage(cfg config.PipelineConfig, w Writers, logger ports.Logger) *Stage {
	return &Stage{
		out:    cfg.Output,
		pose:   cfg.Pose,
		w:      w,
		logger: logger.WithComponent("output"),
	}
}

// Kind implements pipeline.Stage.
func (s *Stage) Kind() pipeline.StageKind {
	return pipeline.KindOutput
}

// Stats returns the counters. Only valid once the pipeline has stopped.
func (s *Stage) Stats() Stats {
	return s.stats
}

// Process implements pipeline.Stage. Writer failures are logged and never
// stop the pipeline.
func (s *Stage) Process(ctx context.Context, item *pipeline.WorkItem) error {
	s.stats.Frames++

	var rec pipeline.KeypointRecord
	if s.w.JSON != nil || s.w.Keypoints != nil || s.w.UDP != nil {
		rec = s.scaled(pipeline.NewKeypointRecord(item), item)
	}

	if s.w.JSON != nil {
		s.writeJSON(item.FrameNumber, rec)
	}
	if s.w.Keypoints != nil {
		s.writeLegacy(item.FrameNumber, rec)
	}
	if s.w.Images != nil && item.Output != nil {
		name := fmt.Sprintf("%012d_rendered", item.FrameNumber)
		s.check(s.w.Images.SaveImage(name, item.Output, s.out.ImagesFormat), "image", item.FrameNumber, &s.stats.Images)
	}
	if s.w.Heatmaps != nil {
		s.writeHeatmaps(item)
	}
	if s.w.Video != nil {
		s.writeVideo(item)
	}
	if s.w.UDP != nil {
		if data, err := json.Marshal(rec); err != nil {
			s.check(err, "datagram", item.FrameNumber, nil)
		} else {
			s.check(s.w.UDP.Send(data), "datagram", item.FrameNumber, &s.stats.Datagrams)
		}
	}
	s.progress(item.FrameNumber)
	return nil
}

func (s *Stage) writeJSON(frame uint64, rec pipeline.KeypointRecord) {
	data, err := json.Marshal(rec)
	if err == nil {
		err = s.w.JSON.SaveData(fmt.Sprintf("%012d_keypoints.json", frame), data)
	}
	s.check(err, "JSON", frame, &s.stats.Keypoints)
}

func (s *Stage) writeLegacy(frame uint64, rec pipeline.KeypointRecord) {
	var data []byte
	var err error
	if s.out.KeypointFormat == config.DataJSON {
		data, err = json.MarshalIndent(rec, "", "  ")
	} else {
		data, err = yaml.Marshal(rec)
	}
	if err == nil {
		err = s.w.Keypoints.SaveData(fmt.Sprintf("%012d_pose.%s", frame, s.out.KeypointFormat), data)
	}
	s.check(err, "keypoint", frame, nil)
}

func (s *Stage) writeHeatmaps(item *pipeline.WorkItem) {
	lo, hi := float32(0), float32(1)
	if s.pose.HeatmapScale == config.HeatmapPlusMinusOne {
		lo = -1
	}
	for _, hm := range item.Annotations.Heatmaps {
		name := fmt.Sprintf("%012d_heatmap_%s_%d", item.FrameNumber, hm.Kind, hm.Part)
		img := pipeline.HeatmapGray(hm, lo, hi)
		s.check(s.w.Heatmaps.SaveImage(name, img, s.out.HeatmapsFormat), "heatmap", item.FrameNumber, &s.stats.Heatmaps)
	}
}

func (s *Stage) writeVideo(item *pipeline.WorkItem) {
	if s.videoFailed || item.Output == nil {
		return
	}
	if !s.videoStarted {
		b := item.Output.Bounds()
		if err := s.w.Video.Begin(b.Dx(), b.Dy(), s.out.VideoFPS, ports.EncoderOptions{Quality: 90}); err != nil {
			s.logger.Warn("Video writer disabled: %v", err)
			s.videoFailed = true
			s.stats.Failures++
			return
		}
		s.videoStarted = true
	}
	pts := time.Duration(float64(s.stats.VideoFrames) * float64(time.Second) / s.out.VideoFPS)
	s.check(s.w.Video.EncodeFrame(item.Output, pts), "video", item.FrameNumber, &s.stats.VideoFrames)
}

func (s *Stage) progress(frame uint64) {
	if s.w.Progress == nil || s.out.CLIVerbose < 1 {
		return
	}
	every := int(s.out.CLIVerbose)
	if s.stats.Frames%every != 0 {
		return
	}
	if s.w.ProgressTTY {
		fmt.Fprintf(s.w.Progress, "\rProcessed %d frames (last frame %d)", s.stats.Frames, frame)
		return
	}
	fmt.Fprintf(s.w.Progress, "Processed %d frames (last frame %d)\n", s.stats.Frames, frame)
}

// check logs a writer failure or bumps counter on success.
func (s *Stage) check(err error, what string, frame uint64, counter *int) {
	if err != nil {
		s.stats.Failures++
		s.logger.Warn("Failed to write %s for frame %d: %v", what, frame, err)
		return
	}
	if counter != nil {
		*counter++
	}
}

// scaled maps the record into the configured keypoint coordinate space.
func (s *Stage) scaled(rec pipeline.KeypointRecord, item *pipeline.WorkItem) pipeline.KeypointRecord {
	w := float64(item.Input.Bounds().Dx())
	h := float64(item.Input.Bounds().Dy())
	switch s.pose.KeypointScale {
	case config.ScaleNetOutput:
		nw, nh := s.pose.NetResolution.Resolve(int(w), int(h), 16)
		return rec.MapKeypoints(func(x, y float64) (float64, float64) {
			return x * float64(nw) / w, y * float64(nh) / h
		})
	case config.ScaleOutputResolution:
		ow, oh := s.pose.OutputResolution.Resolve(int(w), int(h), 1)
		return rec.MapKeypoints(func(x, y float64) (float64, float64) {
			return x * float64(ow) / w, y * float64(oh) / h
		})
	case config.ScaleZeroToOne:
		return rec.MapKeypoints(func(x, y float64) (float64, float64) {
			return x / w, y / h
		})
	case config.ScalePlusMinusOne:
		return rec.MapKeypoints(func(x, y float64) (float64, float64) {
			return 2*x/w - 1, 2*y/h - 1
		})
	default:
		return rec
	}
}

// Close finalises the video and releases the datagram socket.
func (s *Stage) Close() error {
	var firstErr error
	if s.videoStarted {
		data, err := s.w.Video.End()
		if err == nil && s.w.FS != nil {
			err = s.w.FS.WriteFile(s.out.VideoPath, data)
		}
		if err != nil {
			firstErr = fmt.Errorf("write video: %w", err)
		} else {
			s.logger.Info("Video saved to %s (%d frames)", s.out.VideoPath, s.stats.VideoFrames)
		}
	}
	if s.w.Progress != nil && s.w.ProgressTTY && s.out.CLIVerbose >= 1 {
		fmt.Fprintln(s.w.Progress)
	}
	if s.w.UDP != nil {
		if err := s.w.UDP.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close datagram sender: %w", err)
		}
	}
	return firstErr
}

var _ pipeline.Stage = (*Stage)(nil)
var _ pipeline.Closer = (*Stage)(nil)
