package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
)

// PipelineConfig is the validated, frozen configuration of a run. It holds
// only value types, so a copy can never alias another.
type PipelineConfig struct {
	Logging   LoggingConfig
	Producer  ProducerConfig
	Pose      PoseConfig
	Face      FaceConfig
	Hand      HandConfig
	Extra     ExtraConfig
	Output    OutputConfig
	Display   DisplayConfig
	Execution ExecutionConfig
}

// LoggingConfig controls log priority and profiling.
type LoggingConfig struct {
	Threshold    int
	Level        ports.LogLevel
	ProfileSpeed int
}

// ProducerConfig controls the frame source.
type ProducerConfig struct {
	Source        SourceKind
	Width         int
	Height        int
	FPS           float64
	PullTimeout   time.Duration
	ImageDir      string
	PatternFrames int
}

// StreamParams returns the parameters the source is started with.
func (c ProducerConfig) StreamParams() ports.StreamParams {
	return ports.StreamParams{
		Width:  c.Width,
		Height: c.Height,
		Format: ports.FormatBGR8,
		FPS:    c.FPS,
	}
}

// PoseConfig controls body estimation and rendering.
type PoseConfig struct {
	Enabled           bool
	NetResolution     Point
	OutputResolution  Point
	Model             PoseModel
	KeypointScale     ScaleMode
	NumGPU            int
	NumGPUStart       int
	ScaleNumber       int
	ScaleGap          float64
	RenderMode        RenderMode
	Blending          bool
	AlphaPose         float64
	AlphaHeatmap      float64
	PartToShow        int
	ModelFolder       string
	Heatmaps          HeatmapTypes
	HeatmapScale      HeatmapScaleMode
	RenderThreshold   float64
	MaxPeople         int
	MaximizePositives bool
	FPSMax            float64
	UpsamplingRatio   float64
}

// FaceConfig controls face keypoint estimation.
type FaceConfig struct {
	Enabled         bool
	Detector        Detector
	NetResolution   Point
	RenderMode      RenderMode
	AlphaPose       float64
	AlphaHeatmap    float64
	RenderThreshold float64
}

// HandConfig controls hand keypoint estimation.
type HandConfig struct {
	Enabled         bool
	Detector        Detector
	NetResolution   Point
	ScaleNumber     int
	ScaleRange      float64
	RenderMode      RenderMode
	AlphaPose       float64
	AlphaHeatmap    float64
	RenderThreshold float64
}

// ExtraConfig controls 3D reconstruction and person identity.
type ExtraConfig struct {
	Reconstruct3D  bool
	MinViews3D     int
	Identification bool
	Tracking       int
	IKThreads      int
}

// AssignsIDs reports whether people get identities.
func (c ExtraConfig) AssignsIDs() bool {
	return c.Identification || c.Tracking >= 0
}

// OutputConfig controls the writers. Empty paths disable a writer.
type OutputConfig struct {
	CLIVerbose     float64
	KeypointDir    string
	KeypointFormat DataFormat
	JSONDir        string
	ImagesDir      string
	ImagesFormat   ports.ImageFormat
	VideoPath      string
	VideoFPS       float64
	HeatmapsDir    string
	HeatmapsFormat ports.ImageFormat
	UDPHost        string
	UDPPort        int
	SummaryPath    string
}

// UDPAddr returns the host:port of the datagram sink.
func (c OutputConfig) UDPAddr() string {
	return fmt.Sprintf("%s:%d", c.UDPHost, c.UDPPort)
}

// DisplayConfig controls the display stage.
type DisplayConfig struct {
	Mode       DisplayMode
	Verbose    bool
	Fullscreen bool
	Addr       string
}

// ExecutionConfig controls scheduling.
type ExecutionConfig struct {
	DisableMultiThread bool
	QueueSize          int
	ProducerOwnThread  bool
}

// problems accumulates validation failures.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

// Build parses, derives and validates opts. Every violated rule is
// reported in a single *pipeline.ConfigValidationError; on error the
// returned PipelineConfig is the zero value.
func Build(opts Options) (PipelineConfig, error) {
	var errs problems
	cfg := PipelineConfig{
		Logging:   buildLogging(opts.Logging, &errs),
		Producer:  buildProducer(opts.Producer, &errs),
		Extra:     buildExtra(opts.Extra, &errs),
		Execution: buildExecution(opts.Execution, &errs),
	}
	cfg.Pose = buildPose(opts.Pose, &errs)
	cfg.Face = buildFace(opts.Face, cfg.Pose, &errs)
	cfg.Hand = buildHand(opts.Hand, cfg.Pose, &errs)
	cfg.Output = buildOutput(opts.Output, cfg, &errs)
	cfg.Display = buildDisplay(opts.Display, cfg.Extra, &errs)

	if cfg.Extra.Tracking >= 0 && cfg.Pose.MaxPeople != 1 {
		errs.addf("tracking requires number_people_max 1, got %d", cfg.Pose.MaxPeople)
	}

	if len(errs) > 0 {
		return PipelineConfig{}, &pipeline.ConfigValidationError{Problems: errs}
	}
	return cfg, nil
}

// Deprecations returns warnings for deprecated options set in opts.
func Deprecations(opts Options) []string {
	var warnings []string
	if opts.Output.WriteKeypoint != "" {
		warnings = append(warnings, "write_keypoint is deprecated and will be removed; use write_json instead")
	}
	return warnings
}

func buildLogging(o LoggingOptions, errs *problems) LoggingConfig {
	if o.Level < 0 || o.Level > 255 {
		errs.addf("logging_level %d not in 0..255", o.Level)
	}
	if o.ProfileSpeed < 1 {
		errs.addf("profile_speed %d must be at least 1", o.ProfileSpeed)
	}
	return LoggingConfig{
		Threshold:    o.Level,
		Level:        ports.LevelFromThreshold(o.Level),
		ProfileSpeed: o.ProfileSpeed,
	}
}

func buildProducer(o ProducerOptions, errs *problems) ProducerConfig {
	c := ProducerConfig{
		Source:        SourceKind(o.Source),
		Width:         o.ColorWidth,
		Height:        o.ColorHeight,
		FPS:           o.FPS,
		PullTimeout:   o.PullTimeout,
		ImageDir:      o.ImageDir,
		PatternFrames: o.PatternFrames,
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs.addf("color_width and color_height must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		errs.addf("fps %g must be positive", c.FPS)
	}
	if c.PullTimeout <= 0 {
		errs.addf("pull_timeout %s must be positive", c.PullTimeout)
	}
	switch c.Source {
	case SourcePattern:
		if c.PatternFrames < 0 {
			errs.addf("pattern_frames %d must be non-negative", c.PatternFrames)
		}
	case SourceDirectory:
		if c.ImageDir == "" {
			errs.addf("source %q requires image_dir", c.Source)
		}
	default:
		errs.addf("source %q not in {pattern,dir}", o.Source)
	}
	return c
}

func buildPose(o PoseOptions, errs *problems) PoseConfig {
	c := PoseConfig{
		Enabled:           o.Body != 0,
		KeypointScale:     ScaleMode(o.KeypointScale),
		NumGPU:            o.NumGPU,
		NumGPUStart:       o.NumGPUStart,
		ScaleNumber:       o.ScaleNumber,
		ScaleGap:          o.ScaleGap,
		Blending:          !o.DisableBlending,
		AlphaPose:         o.AlphaPose,
		AlphaHeatmap:      o.AlphaHeatmap,
		PartToShow:        o.PartToShow,
		ModelFolder:       o.ModelFolder,
		Heatmaps:          HeatmapTypes{Parts: o.HeatmapsAddParts, Background: o.HeatmapsAddBkg, PAFs: o.HeatmapsAddPAFs},
		HeatmapScale:      HeatmapScaleMode(o.HeatmapsScale),
		RenderThreshold:   o.RenderThreshold,
		MaxPeople:         o.NumberPeopleMax,
		MaximizePositives: o.MaximizePositives,
		FPSMax:            o.FPSMax,
		UpsamplingRatio:   o.UpsamplingRatio,
	}
	if o.Body != 0 && o.Body != 1 {
		errs.addf("body %d not in {0,1}", o.Body)
	}

	var err error
	if c.NetResolution, err = ParsePoint(o.NetResolution); err != nil {
		errs.addf("net_resolution: %v", err)
	} else {
		checkNetResolution("net_resolution", c.NetResolution, true, errs)
	}
	if c.OutputResolution, err = ParsePoint(o.OutputResolution); err != nil {
		errs.addf("output_resolution: %v", err)
	} else if !autoOrPositive(c.OutputResolution.X) || !autoOrPositive(c.OutputResolution.Y) {
		errs.addf("output_resolution %s components must be -1 or positive", c.OutputResolution)
	}
	if c.Model, err = ParsePoseModel(o.ModelPose); err != nil {
		errs.addf("model_pose: %v", err)
	}
	if c.KeypointScale < ScaleInputResolution || c.KeypointScale > ScalePlusMinusOne {
		errs.addf("keypoint_scale %d not in 0..4", o.KeypointScale)
	}
	if c.NumGPU < -1 {
		errs.addf("num_gpu %d must be -1 or non-negative", c.NumGPU)
	}
	if c.NumGPUStart < 0 {
		errs.addf("num_gpu_start %d must be non-negative", c.NumGPUStart)
	}
	if c.ScaleNumber < 1 {
		errs.addf("scale_number %d must be at least 1", c.ScaleNumber)
	} else if c.ScaleNumber > 1 && (c.ScaleGap <= 0 || c.ScaleGap > 1) {
		errs.addf("scale_gap %g not in (0,1]", c.ScaleGap)
	}
	if c.RenderMode, err = ToRenderMode(o.RenderPose, RenderAuto); err != nil {
		errs.addf("render_pose: %v", err)
	}
	checkUnit("alpha_pose", c.AlphaPose, errs)
	checkUnit("alpha_heatmap", c.AlphaHeatmap, errs)
	checkUnit("render_threshold", c.RenderThreshold, errs)
	if c.PartToShow < 0 || (c.Model != "" && c.PartToShow > c.Model.NumParts()) {
		errs.addf("part_to_show %d out of range", c.PartToShow)
	}
	if c.HeatmapScale < HeatmapPlusMinusOne || c.HeatmapScale > HeatmapNoScale {
		errs.addf("heatmaps_scale %d not in 0..3", o.HeatmapsScale)
	}
	if c.MaxPeople != -1 && c.MaxPeople < 1 {
		errs.addf("number_people_max %d must be -1 or at least 1", c.MaxPeople)
	}
	if c.FPSMax != -1 && c.FPSMax <= 0 {
		errs.addf("fps_max %g must be -1 or positive", c.FPSMax)
	}
	if c.UpsamplingRatio < 0 {
		errs.addf("upsampling_ratio %g must be non-negative", c.UpsamplingRatio)
	}
	return c
}

func buildFace(o FaceOptions, pose PoseConfig, errs *problems) FaceConfig {
	c := FaceConfig{
		Enabled:         o.Enabled,
		Detector:        Detector(o.Detector),
		AlphaPose:       o.AlphaPose,
		AlphaHeatmap:    o.AlphaHeatmap,
		RenderThreshold: o.RenderThreshold,
	}
	switch c.Detector {
	case DetectorBody, DetectorOpenCV, DetectorProvided:
		if c.Enabled && c.Detector == DetectorBody && !pose.Enabled {
			errs.addf("face_detector %s requires body estimation", c.Detector)
		}
	default:
		errs.addf("face_detector %d not in {0,1,2}", o.Detector)
	}

	var err error
	if c.NetResolution, err = ParsePoint(o.NetResolution); err != nil {
		errs.addf("face_net_resolution: %v", err)
	} else {
		checkNetResolution("face_net_resolution", c.NetResolution, false, errs)
	}
	if c.RenderMode, err = ToRenderMode(o.Render, pose.RenderMode); err != nil {
		errs.addf("face_render: %v", err)
	}
	checkUnit("face_alpha_pose", c.AlphaPose, errs)
	checkUnit("face_alpha_heatmap", c.AlphaHeatmap, errs)
	checkUnit("face_render_threshold", c.RenderThreshold, errs)
	return c
}

func buildHand(o HandOptions, pose PoseConfig, errs *problems) HandConfig {
	c := HandConfig{
		Enabled:         o.Enabled,
		Detector:        Detector(o.Detector),
		ScaleNumber:     o.ScaleNumber,
		ScaleRange:      o.ScaleRange,
		AlphaPose:       o.AlphaPose,
		AlphaHeatmap:    o.AlphaHeatmap,
		RenderThreshold: o.RenderThreshold,
	}
	switch c.Detector {
	case DetectorBody, DetectorProvided, DetectorBodyWithTracking:
		if c.Enabled && c.Detector.UsesBody() && !pose.Enabled {
			errs.addf("hand_detector %s requires body estimation", c.Detector)
		}
	default:
		errs.addf("hand_detector %d not in {0,2,3}", o.Detector)
	}

	var err error
	if c.NetResolution, err = ParsePoint(o.NetResolution); err != nil {
		errs.addf("hand_net_resolution: %v", err)
	} else {
		checkNetResolution("hand_net_resolution", c.NetResolution, false, errs)
	}
	if c.ScaleNumber < 1 {
		errs.addf("hand_scale_number %d must be at least 1", c.ScaleNumber)
	}
	if c.ScaleRange <= 0 || c.ScaleRange > 1 {
		errs.addf("hand_scale_range %g not in (0,1]", c.ScaleRange)
	}
	if c.RenderMode, err = ToRenderMode(o.Render, pose.RenderMode); err != nil {
		errs.addf("hand_render: %v", err)
	}
	checkUnit("hand_alpha_pose", c.AlphaPose, errs)
	checkUnit("hand_alpha_heatmap", c.AlphaHeatmap, errs)
	checkUnit("hand_render_threshold", c.RenderThreshold, errs)
	return c
}

func buildExtra(o ExtraOptions, errs *problems) ExtraConfig {
	c := ExtraConfig{
		Reconstruct3D:  o.Reconstruct3D,
		MinViews3D:     o.MinViews3D,
		Identification: o.Identification,
		Tracking:       o.Tracking,
		IKThreads:      o.IKThreads,
	}
	if c.MinViews3D != -1 && c.MinViews3D < 2 {
		errs.addf("3d_min_views %d must be -1 or at least 2", c.MinViews3D)
	}
	if c.Tracking < -1 {
		errs.addf("tracking %d must be -1 or non-negative", c.Tracking)
	}
	if c.IKThreads < 0 {
		errs.addf("ik_threads %d must be non-negative", c.IKThreads)
	}
	return c
}

func buildOutput(o OutputOptions, cfg PipelineConfig, errs *problems) OutputConfig {
	c := OutputConfig{
		CLIVerbose:  o.CLIVerbose,
		KeypointDir: o.WriteKeypoint,
		JSONDir:     o.WriteJSON,
		ImagesDir:   o.WriteImages,
		VideoPath:   o.WriteVideo,
		VideoFPS:    o.WriteVideoFPS,
		HeatmapsDir: o.WriteHeatmaps,
		UDPHost:     o.UDPHost,
		SummaryPath: o.WriteSummary,
	}
	if c.CLIVerbose != -1 && c.CLIVerbose < 1 {
		errs.addf("cli_verbose %g must be -1 or at least 1", c.CLIVerbose)
	}

	var err error
	if c.KeypointFormat, err = ParseDataFormat(o.WriteKeypointFormat); err != nil {
		errs.addf("write_keypoint_format: %v", err)
	}
	if c.ImagesFormat, err = ParseImageFormat(o.WriteImagesFormat); err != nil {
		errs.addf("write_images_format: %v", err)
	}
	if c.HeatmapsFormat, err = ParseImageFormat(o.WriteHeatmapsFormat); err != nil {
		errs.addf("write_heatmaps_format: %v", err)
	}

	switch {
	case c.VideoFPS == -1:
		c.VideoFPS = cfg.Producer.FPS
	case c.VideoFPS <= 0:
		errs.addf("write_video_fps %g must be -1 or positive", c.VideoFPS)
	}

	if c.UDPHost != "" {
		port, err := strconv.Atoi(o.UDPPort)
		if err != nil || port < 1 || port > 65535 {
			errs.addf("udp_port %q not in 1..65535", o.UDPPort)
		}
		c.UDPPort = port
	}

	if c.HeatmapsDir != "" && !cfg.Pose.Heatmaps.Any() {
		errs.addf("write_heatmaps requires at least one of heatmaps_add_parts, heatmaps_add_bkg, heatmaps_add_PAFs")
	}
	return c
}

func buildDisplay(o DisplayOptions, extra ExtraConfig, errs *problems) DisplayConfig {
	c := DisplayConfig{
		Verbose:    !o.NoGUIVerbose,
		Fullscreen: o.Fullscreen,
		Addr:       o.Addr,
	}
	var err error
	if c.Mode, err = ToDisplayMode(o.Display, extra.Reconstruct3D); err != nil {
		errs.addf("display: %v", err)
		return c
	}
	if c.Mode == Display3D && !extra.Reconstruct3D {
		errs.addf("display %s requires 3d", c.Mode)
	}
	if DisplayMode(o.Display) == DisplayAuto && c.Addr == "" {
		c.Mode = DisplayNone
	}
	return c
}

func buildExecution(o ExecutionOptions, errs *problems) ExecutionConfig {
	if o.QueueSize < 1 {
		errs.addf("queue_size %d must be at least 1", o.QueueSize)
	}
	return ExecutionConfig{
		DisableMultiThread: o.DisableMultiThread,
		QueueSize:          o.QueueSize,
		ProducerOwnThread:  o.ProducerOwnThread,
	}
}

// checkNetResolution validates a network input size. Components must be
// positive multiples of 16; when allowAuto is set one of them may be -1.
func checkNetResolution(name string, p Point, allowAuto bool, errs *problems) {
	valid := func(v int) bool {
		if v == -1 {
			return allowAuto
		}
		return v > 0 && v%16 == 0
	}
	if !valid(p.X) || !valid(p.Y) {
		errs.addf("%s %s components must be positive multiples of 16", name, p)
		return
	}
	if p.X == -1 && p.Y == -1 {
		errs.addf("%s %s cannot derive both components", name, p)
	}
}

func checkUnit(name string, v float64, errs *problems) {
	if v < 0 || v > 1 {
		errs.addf("%s %g not in [0,1]", name, v)
	}
}

func autoOrPositive(v int) bool {
	return v == -1 || v > 0
}
