package config

import (
	"time"

	"github.com/user/posestream/pkg/ports"
)

// Builder provides a fluent interface for building a PipelineConfig.
type Builder struct {
	opts   Options
	logger ports.Logger
}

// NewBuilder creates a Builder starting from base, usually Defaults() or
// the result of LoadFile.
func NewBuilder(base Options) *Builder {
	return &Builder{opts: base}
}

// Options returns a copy of the options collected so far.
func (b *Builder) Options() Options {
	return b.opts
}

// Build validates the collected options. Deprecation warnings go to the
// logger set with WithLogger.
func (b *Builder) Build() (PipelineConfig, error) {
	if b.logger != nil {
		for _, w := range Deprecations(b.opts) {
			b.logger.Warn(w)
		}
	}
	return Build(b.opts)
}

// WithLogger sets the logger deprecation warnings are reported to.
func (b *Builder) WithLogger(logger ports.Logger) *Builder {
	b.logger = logger
	return b
}

// Apply runs fn against the raw options, for settings without a
// dedicated method.
func (b *Builder) Apply(fn func(*Options)) *Builder {
	fn(&b.opts)
	return b
}

// WithLoggingLevel sets the 0-255 logging threshold.
func (b *Builder) WithLoggingLevel(level int) *Builder {
	b.opts.Logging.Level = level
	return b
}

// WithProfileSpeed sets how many frames stage timings are averaged over.
func (b *Builder) WithProfileSpeed(frames int) *Builder {
	b.opts.Logging.ProfileSpeed = frames
	return b
}

// WithPatternSource selects the synthetic source producing frames frames.
func (b *Builder) WithPatternSource(frames int) *Builder {
	b.opts.Producer.Source = string(SourcePattern)
	b.opts.Producer.PatternFrames = frames
	return b
}

// WithImageDir selects the directory source.
func (b *Builder) WithImageDir(dir string) *Builder {
	b.opts.Producer.Source = string(SourceDirectory)
	b.opts.Producer.ImageDir = dir
	return b
}

// WithColorSize sets the captured frame size.
func (b *Builder) WithColorSize(width, height int) *Builder {
	b.opts.Producer.ColorWidth = width
	b.opts.Producer.ColorHeight = height
	return b
}

// WithFPS sets the capture frame rate.
func (b *Builder) WithFPS(fps float64) *Builder {
	b.opts.Producer.FPS = fps
	return b
}

// WithPullTimeout sets how long a single frame pull may block.
func (b *Builder) WithPullTimeout(d time.Duration) *Builder {
	b.opts.Producer.PullTimeout = d
	return b
}

// WithBody enables or disables body estimation.
func (b *Builder) WithBody(enabled bool) *Builder {
	b.opts.Pose.Body = boolToInt(enabled)
	return b
}

// WithModel sets the body model name.
func (b *Builder) WithModel(model PoseModel) *Builder {
	b.opts.Pose.ModelPose = string(model)
	return b
}

// WithNetResolution sets the body network input size in "WxH" form.
func (b *Builder) WithNetResolution(res string) *Builder {
	b.opts.Pose.NetResolution = res
	return b
}

// WithOutputResolution sets the rendered output size in "WxH" form.
func (b *Builder) WithOutputResolution(res string) *Builder {
	b.opts.Pose.OutputResolution = res
	return b
}

// WithRenderPose sets the body render mode flag.
func (b *Builder) WithRenderPose(mode int) *Builder {
	b.opts.Pose.RenderPose = mode
	return b
}

// WithNumberPeopleMax caps the number of people kept per frame.
func (b *Builder) WithNumberPeopleMax(n int) *Builder {
	b.opts.Pose.NumberPeopleMax = n
	return b
}

// WithHeatmaps selects the heatmap channels to produce.
func (b *Builder) WithHeatmaps(parts, background, pafs bool) *Builder {
	b.opts.Pose.HeatmapsAddParts = parts
	b.opts.Pose.HeatmapsAddBkg = background
	b.opts.Pose.HeatmapsAddPAFs = pafs
	return b
}

// WithFace enables face estimation with the given detector.
func (b *Builder) WithFace(enabled bool, detector Detector) *Builder {
	b.opts.Face.Enabled = enabled
	b.opts.Face.Detector = int(detector)
	return b
}

// WithHand enables hand estimation with the given detector.
func (b *Builder) WithHand(enabled bool, detector Detector) *Builder {
	b.opts.Hand.Enabled = enabled
	b.opts.Hand.Detector = int(detector)
	return b
}

// WithTracking sets the tracking interval; -1 disables tracking.
func (b *Builder) WithTracking(interval int) *Builder {
	b.opts.Extra.Tracking = interval
	return b
}

// WithIdentification enables person identification.
func (b *Builder) WithIdentification(enabled bool) *Builder {
	b.opts.Extra.Identification = enabled
	return b
}

// WithWriteJSON sets the per-frame JSON output directory.
func (b *Builder) WithWriteJSON(dir string) *Builder {
	b.opts.Output.WriteJSON = dir
	return b
}

// WithWriteImages sets the rendered image directory and format.
func (b *Builder) WithWriteImages(dir, format string) *Builder {
	b.opts.Output.WriteImages = dir
	b.opts.Output.WriteImagesFormat = format
	return b
}

// WithWriteVideo sets the output video path.
func (b *Builder) WithWriteVideo(path string) *Builder {
	b.opts.Output.WriteVideo = path
	return b
}

// WithUDP sets the keypoint datagram destination.
func (b *Builder) WithUDP(host, port string) *Builder {
	b.opts.Output.UDPHost = host
	b.opts.Output.UDPPort = port
	return b
}

// WithDisplay sets the display mode flag and the viewer address.
func (b *Builder) WithDisplay(mode int, addr string) *Builder {
	b.opts.Display.Display = mode
	b.opts.Display.Addr = addr
	return b
}

// WithSingleThread runs every stage on the calling goroutine.
func (b *Builder) WithSingleThread(enabled bool) *Builder {
	b.opts.Execution.DisableMultiThread = enabled
	return b
}

// WithQueueSize sets the capacity of the queues between stage groups.
func (b *Builder) WithQueueSize(n int) *Builder {
	b.opts.Execution.QueueSize = n
	return b
}

// WithProducerOwnThread selects whether the producer runs on its own
// goroutine.
func (b *Builder) WithProducerOwnThread(enabled bool) *Builder {
	b.opts.Execution.ProducerOwnThread = enabled
	return b
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
