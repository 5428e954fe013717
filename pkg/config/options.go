// Package config provides configuration loading, validation and management.
package config

import "time"

// Options holds raw, unvalidated option values as they come from the
// command line or a YAML file. Build turns them into a PipelineConfig.
type Options struct {
	Logging   LoggingOptions   `yaml:"logging"`
	Producer  ProducerOptions  `yaml:"producer"`
	Pose      PoseOptions      `yaml:"pose"`
	Face      FaceOptions      `yaml:"face"`
	Hand      HandOptions      `yaml:"hand"`
	Extra     ExtraOptions     `yaml:"extra"`
	Output    OutputOptions    `yaml:"output"`
	Display   DisplayOptions   `yaml:"display"`
	Execution ExecutionOptions `yaml:"execution"`
}

// LoggingOptions represents logging settings.
type LoggingOptions struct {
	Level        int `yaml:"logging_level"`
	ProfileSpeed int `yaml:"profile_speed"`
}

// ProducerOptions represents frame source settings.
type ProducerOptions struct {
	Source        string        `yaml:"source"`
	ColorWidth    int           `yaml:"color_width"`
	ColorHeight   int           `yaml:"color_height"`
	FPS           float64       `yaml:"fps"`
	PullTimeout   time.Duration `yaml:"pull_timeout"`
	ImageDir      string        `yaml:"image_dir"`
	PatternFrames int           `yaml:"pattern_frames"`
}

// PoseOptions represents body estimation settings.
type PoseOptions struct {
	Body              int     `yaml:"body"`
	NetResolution     string  `yaml:"net_resolution"`
	OutputResolution  string  `yaml:"output_resolution"`
	ModelPose         string  `yaml:"model_pose"`
	KeypointScale     int     `yaml:"keypoint_scale"`
	NumGPU            int     `yaml:"num_gpu"`
	NumGPUStart       int     `yaml:"num_gpu_start"`
	ScaleNumber       int     `yaml:"scale_number"`
	ScaleGap          float64 `yaml:"scale_gap"`
	RenderPose        int     `yaml:"render_pose"`
	DisableBlending   bool    `yaml:"disable_blending"`
	AlphaPose         float64 `yaml:"alpha_pose"`
	AlphaHeatmap      float64 `yaml:"alpha_heatmap"`
	PartToShow        int     `yaml:"part_to_show"`
	ModelFolder       string  `yaml:"model_folder"`
	HeatmapsAddParts  bool    `yaml:"heatmaps_add_parts"`
	HeatmapsAddBkg    bool    `yaml:"heatmaps_add_bkg"`
	HeatmapsAddPAFs   bool    `yaml:"heatmaps_add_PAFs"`
	HeatmapsScale     int     `yaml:"heatmaps_scale"`
	RenderThreshold   float64 `yaml:"render_threshold"`
	NumberPeopleMax   int     `yaml:"number_people_max"`
	MaximizePositives bool    `yaml:"maximize_positives"`
	FPSMax            float64 `yaml:"fps_max"`
	UpsamplingRatio   float64 `yaml:"upsampling_ratio"`
}

// FaceOptions represents face keypoint settings.
type FaceOptions struct {
	Enabled         bool    `yaml:"face"`
	Detector        int     `yaml:"face_detector"`
	NetResolution   string  `yaml:"face_net_resolution"`
	Render          int     `yaml:"face_render"`
	AlphaPose       float64 `yaml:"face_alpha_pose"`
	AlphaHeatmap    float64 `yaml:"face_alpha_heatmap"`
	RenderThreshold float64 `yaml:"face_render_threshold"`
}

// HandOptions represents hand keypoint settings.
type HandOptions struct {
	Enabled         bool    `yaml:"hand"`
	Detector        int     `yaml:"hand_detector"`
	NetResolution   string  `yaml:"hand_net_resolution"`
	ScaleNumber     int     `yaml:"hand_scale_number"`
	ScaleRange      float64 `yaml:"hand_scale_range"`
	Render          int     `yaml:"hand_render"`
	AlphaPose       float64 `yaml:"hand_alpha_pose"`
	AlphaHeatmap    float64 `yaml:"hand_alpha_heatmap"`
	RenderThreshold float64 `yaml:"hand_render_threshold"`
}

// ExtraOptions represents 3D reconstruction and identity settings.
type ExtraOptions struct {
	Reconstruct3D  bool `yaml:"3d"`
	MinViews3D     int  `yaml:"3d_min_views"`
	Identification bool `yaml:"identification"`
	Tracking       int  `yaml:"tracking"`
	IKThreads      int  `yaml:"ik_threads"`
}

// OutputOptions represents writer settings.
type OutputOptions struct {
	CLIVerbose          float64 `yaml:"cli_verbose"`
	WriteKeypoint       string  `yaml:"write_keypoint"`
	WriteKeypointFormat string  `yaml:"write_keypoint_format"`
	WriteJSON           string  `yaml:"write_json"`
	WriteImages         string  `yaml:"write_images"`
	WriteImagesFormat   string  `yaml:"write_images_format"`
	WriteVideo          string  `yaml:"write_video"`
	WriteVideoFPS       float64 `yaml:"write_video_fps"`
	WriteHeatmaps       string  `yaml:"write_heatmaps"`
	WriteHeatmapsFormat string  `yaml:"write_heatmaps_format"`
	UDPHost             string  `yaml:"udp_host"`
	UDPPort             string  `yaml:"udp_port"`
	WriteSummary        string  `yaml:"write_summary"`
}

// DisplayOptions represents display settings.
type DisplayOptions struct {
	Display      int    `yaml:"display"`
	NoGUIVerbose bool   `yaml:"no_gui_verbose"`
	Fullscreen   bool   `yaml:"fullscreen"`
	Addr         string `yaml:"display_addr"`
}

// ExecutionOptions represents scheduling settings.
type ExecutionOptions struct {
	DisableMultiThread bool `yaml:"disable_multi_thread"`
	QueueSize          int  `yaml:"queue_size"`
	ProducerOwnThread  bool `yaml:"producer_own_thread"`
}

// Defaults returns Options with default values.
func Defaults() Options {
	return Options{
		Logging: LoggingOptions{
			Level:        2,
			ProfileSpeed: 1000,
		},
		Producer: ProducerOptions{
			Source:        string(SourcePattern),
			ColorWidth:    1280,
			ColorHeight:   720,
			FPS:           30,
			PullTimeout:   5 * time.Second,
			PatternFrames: 300,
		},
		Pose: PoseOptions{
			Body:             1,
			NetResolution:    "-1x368",
			OutputResolution: "-1x-1",
			ModelPose:        string(ModelBody25),
			NumGPU:           -1,
			ScaleNumber:      1,
			ScaleGap:         0.25,
			RenderPose:       -1,
			AlphaPose:        0.6,
			AlphaHeatmap:     0.7,
			ModelFolder:      "models/",
			HeatmapsScale:    int(HeatmapUnsignedChar),
			RenderThreshold:  0.05,
			NumberPeopleMax:  -1,
			FPSMax:           -1,
		},
		Face: FaceOptions{
			NetResolution:   "368x368",
			Render:          -1,
			AlphaPose:       0.6,
			AlphaHeatmap:    0.7,
			RenderThreshold: 0.4,
		},
		Hand: HandOptions{
			NetResolution:   "368x368",
			ScaleNumber:     1,
			ScaleRange:      0.4,
			Render:          -1,
			AlphaPose:       0.6,
			AlphaHeatmap:    0.7,
			RenderThreshold: 0.2,
		},
		Extra: ExtraOptions{
			MinViews3D: -1,
			Tracking:   -1,
		},
		Output: OutputOptions{
			CLIVerbose:          -1,
			WriteKeypointFormat: string(DataYML),
			WriteImagesFormat:   "png",
			WriteVideoFPS:       -1,
			WriteHeatmapsFormat: "png",
			UDPPort:             "8051",
		},
		Display: DisplayOptions{
			Display: int(DisplayAuto),
			Addr:    ":8090",
		},
		Execution: ExecutionOptions{
			QueueSize:         8,
			ProducerOwnThread: true,
		},
	}
}
