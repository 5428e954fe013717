// Package summarizer provides end-of-run summaries of a pipeline run.
package summarizer

import "time"

// Summary contains everything reported about one run.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`

	Run      RunInfo    `json:"run"`
	Frames   FrameInfo  `json:"frames"`
	Settings Settings   `json:"settings"`
	Outputs  OutputInfo `json:"outputs"`
}

// RunInfo describes when and how the run ended.
type RunInfo struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	StopReason string    `json:"stop_reason"`
	Error      string    `json:"error,omitempty"` // Empty on a graceful end
}

// Duration returns the wall time of the run.
func (r RunInfo) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FrameInfo contains frame counters.
type FrameInfo struct {
	Accepted  uint64 `json:"accepted"`
	Processed uint64 `json:"processed"`
	Dropped   uint64 `json:"dropped"`
	LastFrame uint64 `json:"last_frame"`
}

// Settings contains the key configuration of the run.
type Settings struct {
	Source           string  `json:"source"`
	InputWidth       int     `json:"input_width"`
	InputHeight      int     `json:"input_height"`
	FPS              float64 `json:"fps"`
	Model            string  `json:"model,omitempty"`
	NetResolution    string  `json:"net_resolution,omitempty"`
	OutputResolution string  `json:"output_resolution"`
	Body             bool    `json:"body"`
	Face             bool    `json:"face"`
	Hand             bool    `json:"hand"`
	MultiThread      bool    `json:"multi_thread"`
	QueueSize        int     `json:"queue_size"`
}

// OutputInfo lists where results were written. Empty fields were disabled.
type OutputInfo struct {
	JSONDir     string `json:"json_dir,omitempty"`
	KeypointDir string `json:"keypoint_dir,omitempty"`
	ImagesDir   string `json:"images_dir,omitempty"`
	HeatmapsDir string `json:"heatmaps_dir,omitempty"`
	VideoPath   string `json:"video_path,omitempty"`
	UDPAddr     string `json:"udp_addr,omitempty"`
	DisplayAddr string `json:"display_addr,omitempty"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRun sets the run timing and outcome. A nil err is a graceful end.
func (b *Builder) WithRun(started, finished time.Time, reason string, err error) *Builder {
	b.summary.Run = RunInfo{
		StartedAt:  started,
		FinishedAt: finished,
		StopReason: reason,
	}
	if err != nil {
		b.summary.Run.Error = err.Error()
	}
	return b
}

// WithFrames sets the frame counters.
func (b *Builder) WithFrames(frames FrameInfo) *Builder {
	b.summary.Frames = frames
	return b
}

// WithSettings sets the run settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithOutputs sets the output locations.
func (b *Builder) WithOutputs(outputs OutputInfo) *Builder {
	b.summary.Outputs = outputs
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
