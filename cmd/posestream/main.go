// Package main provides the CLI entry point for posestream.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/posestream/pkg/adapters/ggrenderer"
	"github.com/user/posestream/pkg/adapters/logger"
	"github.com/user/posestream/pkg/adapters/osfilesystem"
	"github.com/user/posestream/pkg/config"
	"github.com/user/posestream/pkg/orchestrator"
	"github.com/user/posestream/pkg/pipeline"
	"github.com/user/posestream/pkg/ports"
	"github.com/user/posestream/pkg/summarizer"
)

// CLI defines the command-line interface.
type CLI struct {
	Run     RunCmd     `cmd:"" default:"withargs" help:"Run the keypoint pipeline"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// RunCmd holds every pipeline option as a flat flag set. Unset flags
// keep the value from --config or the built-in default.
type RunCmd struct {
	Config string `name:"config" type:"existingfile" help:"YAML file with option values"`

	// Logging
	LoggingLevel *int `name:"logging_level" group:"Logging" help:"Log priority threshold (0-255, 1 shows everything, 255 nothing)"`
	ProfileSpeed *int `name:"profile_speed" group:"Logging" help:"Log stage timings every N frames"`

	// Producer
	Source        *string        `name:"source" group:"Producer" help:"Frame source (pattern, dir)"`
	ColorWidth    *int           `name:"color_width" group:"Producer" help:"Input frame width"`
	ColorHeight   *int           `name:"color_height" group:"Producer" help:"Input frame height"`
	FPS           *float64       `name:"fps" group:"Producer" help:"Input frame rate"`
	PullTimeout   *time.Duration `name:"pull_timeout" group:"Producer" help:"Maximum wait for one frame"`
	ImageDir      *string        `name:"image_dir" group:"Producer" help:"Directory of images for the dir source"`
	PatternFrames *int           `name:"pattern_frames" group:"Producer" help:"Number of frames the pattern source delivers (0 = unlimited)"`

	// Pose
	Body              *int     `name:"body" group:"Pose" help:"Body keypoint estimation (0 off, 1 on)"`
	NetResolution     *string  `name:"net_resolution" group:"Pose" help:"Network input resolution, multiples of 16 (-1 keeps aspect ratio)"`
	OutputResolution  *string  `name:"output_resolution" group:"Pose" help:"Rendered output resolution (-1x-1 keeps input size)"`
	ModelPose         *string  `name:"model_pose" group:"Pose" help:"Pose model (BODY_25, COCO, MPI, MPI_4_layers)"`
	KeypointScale     *int     `name:"keypoint_scale" group:"Pose" help:"Keypoint coordinate scale of written files (0-4)"`
	NumGPU            *int     `name:"num_gpu" group:"Pose" help:"Number of GPUs (-1 all available)"`
	NumGPUStart       *int     `name:"num_gpu_start" group:"Pose" help:"First GPU index"`
	ScaleNumber       *int     `name:"scale_number" group:"Pose" help:"Number of scales to average"`
	ScaleGap          *float64 `name:"scale_gap" group:"Pose" help:"Scale gap between scales"`
	RenderPose        *int     `name:"render_pose" group:"Pose" help:"Pose rendering (-1 auto, 0 none, 1 CPU, 2 GPU)"`
	DisableBlending   *bool    `name:"disable_blending" group:"Pose" help:"Draw keypoints on a black background"`
	AlphaPose         *float64 `name:"alpha_pose" group:"Pose" help:"Skeleton opacity (0-1)"`
	AlphaHeatmap      *float64 `name:"alpha_heatmap" group:"Pose" help:"Heatmap opacity (0-1)"`
	PartToShow        *int     `name:"part_to_show" group:"Pose" help:"Heatmap channel to overlay (0 none)"`
	ModelFolder       *string  `name:"model_folder" group:"Pose" help:"Folder holding the models"`
	HeatmapsAddParts  *bool    `name:"heatmaps_add_parts" group:"Pose" help:"Output body part heatmaps"`
	HeatmapsAddBkg    *bool    `name:"heatmaps_add_bkg" group:"Pose" help:"Output the background heatmap"`
	HeatmapsAddPAFs   *bool    `name:"heatmaps_add_PAFs" group:"Pose" help:"Output part affinity fields"`
	HeatmapsScale     *int     `name:"heatmaps_scale" group:"Pose" help:"Heatmap value range (0 [-1,1], 1 [0,1], 2 [0,255], 3 raw)"`
	RenderThreshold   *float64 `name:"render_threshold" group:"Pose" help:"Minimum keypoint score to render"`
	NumberPeopleMax   *int     `name:"number_people_max" group:"Pose" help:"Keep at most N people (-1 all)"`
	MaximizePositives *bool    `name:"maximize_positives" group:"Pose" help:"Lower the detection threshold"`
	FPSMax            *float64 `name:"fps_max" group:"Pose" help:"Maximum processing frame rate (-1 unlimited)"`
	UpsamplingRatio   *float64 `name:"upsampling_ratio" group:"Pose" help:"Heatmap upsampling ratio (0 default)"`

	// Face
	Face                *bool    `name:"face" group:"Face" help:"Enable face keypoint estimation"`
	FaceDetector        *int     `name:"face_detector" group:"Face" help:"Face detector (0 body, 1 OpenCV, 2 provided)"`
	FaceNetResolution   *string  `name:"face_net_resolution" group:"Face" help:"Face network resolution"`
	FaceRender          *int     `name:"face_render" group:"Face" help:"Face rendering (-1 follow pose, 0 none, 1 CPU, 2 GPU)"`
	FaceAlphaPose       *float64 `name:"face_alpha_pose" group:"Face" help:"Face keypoint opacity (0-1)"`
	FaceAlphaHeatmap    *float64 `name:"face_alpha_heatmap" group:"Face" help:"Face heatmap opacity (0-1)"`
	FaceRenderThreshold *float64 `name:"face_render_threshold" group:"Face" help:"Minimum face keypoint score to render"`

	// Hand
	Hand                *bool    `name:"hand" group:"Hand" help:"Enable hand keypoint estimation"`
	HandDetector        *int     `name:"hand_detector" group:"Hand" help:"Hand detector (0 body, 2 provided, 3 body with tracking)"`
	HandNetResolution   *string  `name:"hand_net_resolution" group:"Hand" help:"Hand network resolution"`
	HandScaleNumber     *int     `name:"hand_scale_number" group:"Hand" help:"Number of hand scales"`
	HandScaleRange      *float64 `name:"hand_scale_range" group:"Hand" help:"Range between the smallest and largest hand scale"`
	HandRender          *int     `name:"hand_render" group:"Hand" help:"Hand rendering (-1 follow pose, 0 none, 1 CPU, 2 GPU)"`
	HandAlphaPose       *float64 `name:"hand_alpha_pose" group:"Hand" help:"Hand keypoint opacity (0-1)"`
	HandAlphaHeatmap    *float64 `name:"hand_alpha_heatmap" group:"Hand" help:"Hand heatmap opacity (0-1)"`
	HandRenderThreshold *float64 `name:"hand_render_threshold" group:"Hand" help:"Minimum hand keypoint score to render"`

	// Extra
	Reconstruct3D  *bool `name:"3d" group:"Extra" help:"Enable 3D reconstruction"`
	MinViews3D     *int  `name:"3d_min_views" group:"Extra" help:"Minimum views for 3D reconstruction (-1 all)"`
	Identification *bool `name:"identification" group:"Extra" help:"Assign identities to people"`
	Tracking       *int  `name:"tracking" group:"Extra" help:"Track people, estimating every N frames (-1 off)"`
	IKThreads      *int  `name:"ik_threads" group:"Extra" help:"Inverse kinematics threads"`

	// Output
	CLIVerbose          *float64 `name:"cli_verbose" group:"Output" help:"Print progress every N frames (-1 off)"`
	WriteKeypoint       *string  `name:"write_keypoint" group:"Output" help:"Directory for legacy keypoint files (deprecated)"`
	WriteKeypointFormat *string  `name:"write_keypoint_format" group:"Output" help:"Legacy keypoint format (json, yml, yaml)"`
	WriteJSON           *string  `name:"write_json" group:"Output" help:"Directory for per-frame JSON keypoints"`
	WriteImages         *string  `name:"write_images" group:"Output" help:"Directory for rendered images"`
	WriteImagesFormat   *string  `name:"write_images_format" group:"Output" help:"Rendered image format (png, jpg)"`
	WriteVideo          *string  `name:"write_video" group:"Output" help:"Path of the rendered MP4 video"`
	WriteVideoFPS       *float64 `name:"write_video_fps" group:"Output" help:"Video frame rate (-1 input rate)"`
	WriteHeatmaps       *string  `name:"write_heatmaps" group:"Output" help:"Directory for heatmaps"`
	WriteHeatmapsFormat *string  `name:"write_heatmaps_format" group:"Output" help:"Heatmap image format (png, jpg)"`
	UDPHost             *string  `name:"udp_host" group:"Output" help:"Send keypoints to this UDP host"`
	UDPPort             *string  `name:"udp_port" group:"Output" help:"UDP port"`
	WriteSummary        *string  `name:"write_summary" group:"Output" help:"Path of the Markdown run summary"`

	// Display
	Display      *int    `name:"display" group:"Display" help:"Display mode (-1 auto, 0 none, 1 all, 2 2D, 3 3D)"`
	NoGUIVerbose *bool   `name:"no_gui_verbose" group:"Display" help:"Hide the frame caption"`
	Fullscreen   *bool   `name:"fullscreen" group:"Display" help:"Show frames full screen"`
	DisplayAddr  *string `name:"display_addr" group:"Display" help:"Listen address of the browser viewer (empty disables it)"`

	// Execution
	DisableMultiThread *bool `name:"disable_multi_thread" group:"Execution" help:"Run every stage on one goroutine"`
	QueueSize          *int  `name:"queue_size" group:"Execution" help:"Capacity of each stage queue"`
	ProducerOwnThread  *bool `name:"producer_own_thread" group:"Execution" help:"Read frames on a dedicated goroutine"`

	// stderr receives configuration errors; nil means os.Stderr.
	stderr io.Writer
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	parser, err := kong.New(&cli,
		kong.Name("posestream"),
		kong.Description(l10n.T("Stream frames through a staged keypoint estimation pipeline")),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(pipeline.ExitFailure)
	}
	localize(parser.Model.Node)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(); err != nil {
		os.Exit(pipeline.ExitCode(err))
	}
}

// localize translates command, flag and group help in place.
func localize(node *kong.Node) {
	seen := map[*kong.Group]bool{}
	var walk func(n *kong.Node)
	walk = func(n *kong.Node) {
		n.Help = l10n.T(n.Help)
		for _, f := range n.Flags {
			f.Help = l10n.T(f.Help)
			if f.Group != nil && !seen[f.Group] {
				seen[f.Group] = true
				f.Group.Title = l10n.T(f.Group.Title)
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(node)
}

// Run executes the pipeline.
func (cmd *RunCmd) Run() error {
	// Configuration errors are printed whatever logging_level says.
	stderr := cmd.stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	report := logger.NewWriter(ports.LevelError, stderr)

	opts := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFile(cmd.Config)
		if err != nil {
			report.Error("Failed to load config file: %s", err)
			return err
		}
		opts = loaded
	}
	cmd.apply(&opts)

	log := logger.New(opts.Logging.Level)

	cfg, err := config.NewBuilder(opts).WithLogger(log).Build()
	if err != nil {
		var verr *pipeline.ConfigValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				report.Error("Invalid option: %s", p)
			}
		} else {
			report.Error("Invalid configuration: %s", err)
		}
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs := osfilesystem.New()
	orch := orchestrator.New(orchestrator.Dependencies{
		FileSystem:  fs,
		Renderer:    ggrenderer.New(),
		Logger:      log,
		Progress:    os.Stdout,
		ProgressTTY: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	})

	// First signal drains the pipeline, a second one abandons acquisition.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; !ok {
			return
		}
		log.Warn("Interrupted, draining pipeline...")
		orch.RequestStop()
		if _, ok := <-sigCh; ok {
			cancel()
		}
	}()

	result, runErr := orch.Run(ctx, cfg)

	if cfg.Output.SummaryPath != "" {
		formatter := summarizer.ForPath(cfg.Output.SummaryPath, summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		))
		if err := summarizer.NewWriter(formatter, fs).Write(cfg.Output.SummaryPath, orchestrator.Summary(cfg, result, runErr)); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", cfg.Output.SummaryPath)
		}
	}

	if runErr != nil {
		log.Error("Run failed: %s", runErr)
		return runErr
	}
	log.Info("Processed %d frames (%s)", result.Processed, l10n.T(result.StopReason))
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("posestream version %s", version))
	return nil
}

// apply copies every flag the user set onto opts.
func (cmd *RunCmd) apply(o *config.Options) {
	set(&o.Logging.Level, cmd.LoggingLevel)
	set(&o.Logging.ProfileSpeed, cmd.ProfileSpeed)

	set(&o.Producer.Source, cmd.Source)
	set(&o.Producer.ColorWidth, cmd.ColorWidth)
	set(&o.Producer.ColorHeight, cmd.ColorHeight)
	set(&o.Producer.FPS, cmd.FPS)
	set(&o.Producer.PullTimeout, cmd.PullTimeout)
	set(&o.Producer.ImageDir, cmd.ImageDir)
	set(&o.Producer.PatternFrames, cmd.PatternFrames)

	set(&o.Pose.Body, cmd.Body)
	set(&o.Pose.NetResolution, cmd.NetResolution)
	set(&o.Pose.OutputResolution, cmd.OutputResolution)
	set(&o.Pose.ModelPose, cmd.ModelPose)
	set(&o.Pose.KeypointScale, cmd.KeypointScale)
	set(&o.Pose.NumGPU, cmd.NumGPU)
	set(&o.Pose.NumGPUStart, cmd.NumGPUStart)
	set(&o.Pose.ScaleNumber, cmd.ScaleNumber)
	set(&o.Pose.ScaleGap, cmd.ScaleGap)
	set(&o.Pose.RenderPose, cmd.RenderPose)
	set(&o.Pose.DisableBlending, cmd.DisableBlending)
	set(&o.Pose.AlphaPose, cmd.AlphaPose)
	set(&o.Pose.AlphaHeatmap, cmd.AlphaHeatmap)
	set(&o.Pose.PartToShow, cmd.PartToShow)
	set(&o.Pose.ModelFolder, cmd.ModelFolder)
	set(&o.Pose.HeatmapsAddParts, cmd.HeatmapsAddParts)
	set(&o.Pose.HeatmapsAddBkg, cmd.HeatmapsAddBkg)
	set(&o.Pose.HeatmapsAddPAFs, cmd.HeatmapsAddPAFs)
	set(&o.Pose.HeatmapsScale, cmd.HeatmapsScale)
	set(&o.Pose.RenderThreshold, cmd.RenderThreshold)
	set(&o.Pose.NumberPeopleMax, cmd.NumberPeopleMax)
	set(&o.Pose.MaximizePositives, cmd.MaximizePositives)
	set(&o.Pose.FPSMax, cmd.FPSMax)
	set(&o.Pose.UpsamplingRatio, cmd.UpsamplingRatio)

	set(&o.Face.Enabled, cmd.Face)
	set(&o.Face.Detector, cmd.FaceDetector)
	set(&o.Face.NetResolution, cmd.FaceNetResolution)
	set(&o.Face.Render, cmd.FaceRender)
	set(&o.Face.AlphaPose, cmd.FaceAlphaPose)
	set(&o.Face.AlphaHeatmap, cmd.FaceAlphaHeatmap)
	set(&o.Face.RenderThreshold, cmd.FaceRenderThreshold)

	set(&o.Hand.Enabled, cmd.Hand)
	set(&o.Hand.Detector, cmd.HandDetector)
	set(&o.Hand.NetResolution, cmd.HandNetResolution)
	set(&o.Hand.ScaleNumber, cmd.HandScaleNumber)
	set(&o.Hand.ScaleRange, cmd.HandScaleRange)
	set(&o.Hand.Render, cmd.HandRender)
	set(&o.Hand.AlphaPose, cmd.HandAlphaPose)
	set(&o.Hand.AlphaHeatmap, cmd.HandAlphaHeatmap)
	set(&o.Hand.RenderThreshold, cmd.HandRenderThreshold)

	set(&o.Extra.Reconstruct3D, cmd.Reconstruct3D)
	set(&o.Extra.MinViews3D, cmd.MinViews3D)
	set(&o.Extra.Identification, cmd.Identification)
	set(&o.Extra.Tracking, cmd.Tracking)
	set(&o.Extra.IKThreads, cmd.IKThreads)

	set(&o.Output.CLIVerbose, cmd.CLIVerbose)
	set(&o.Output.WriteKeypoint, cmd.WriteKeypoint)
	set(&o.Output.WriteKeypointFormat, cmd.WriteKeypointFormat)
	set(&o.Output.WriteJSON, cmd.WriteJSON)
	set(&o.Output.WriteImages, cmd.WriteImages)
	set(&o.Output.WriteImagesFormat, cmd.WriteImagesFormat)
	set(&o.Output.WriteVideo, cmd.WriteVideo)
	set(&o.Output.WriteVideoFPS, cmd.WriteVideoFPS)
	set(&o.Output.WriteHeatmaps, cmd.WriteHeatmaps)
	set(&o.Output.WriteHeatmapsFormat, cmd.WriteHeatmapsFormat)
	set(&o.Output.UDPHost, cmd.UDPHost)
	set(&o.Output.UDPPort, cmd.UDPPort)
	set(&o.Output.WriteSummary, cmd.WriteSummary)

	set(&o.Display.Display, cmd.Display)
	set(&o.Display.NoGUIVerbose, cmd.NoGUIVerbose)
	set(&o.Display.Fullscreen, cmd.Fullscreen)
	set(&o.Display.Addr, cmd.DisplayAddr)

	set(&o.Execution.DisableMultiThread, cmd.DisableMultiThread)
	set(&o.Execution.QueueSize, cmd.QueueSize)
	set(&o.Execution.ProducerOwnThread, cmd.ProducerOwnThread)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
