package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	t       func(string) string
	version string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates labels with fn.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		if fn != nil {
			f.t = fn
		}
	}
}

// WithVersion adds the program version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{t: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder
	t := f.t

	fmt.Fprintf(&b, "# %s\n\n", t("Run Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Run"))
	row := table(&b, t("Item"), t("Value"))
	row(t("Started"), formatTime(s.Run.StartedAt))
	row(t("Finished"), formatTime(s.Run.FinishedAt))
	row(t("Duration"), formatDuration(s.Run.Duration()))
	row(t("Stop Reason"), orDash(t(s.Run.StopReason)))
	if s.Run.Error != "" {
		row(t("Error"), escape(s.Run.Error))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Frames"))
	row = table(&b, t("Item"), t("Value"))
	row(t("Accepted"), fmt.Sprintf("%d", s.Frames.Accepted))
	row(t("Processed"), fmt.Sprintf("%d", s.Frames.Processed))
	row(t("Dropped"), fmt.Sprintf("%d", s.Frames.Dropped))
	row(t("Last Frame Number"), fmt.Sprintf("%d", s.Frames.LastFrame))
	row(t("Throughput"), formatRate(s.Frames.Processed, s.Run.Duration()))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	row = table(&b, t("Item"), t("Value"))
	row(t("Source"), orDash(s.Settings.Source))
	row(t("Input Size"), fmt.Sprintf("%dx%d @ %.1f fps", s.Settings.InputWidth, s.Settings.InputHeight, s.Settings.FPS))
	if s.Settings.Body {
		row(t("Pose Model"), orDash(s.Settings.Model))
		row(t("Net Resolution"), orDash(s.Settings.NetResolution))
	} else {
		row(t("Pose Model"), t("Disabled"))
	}
	row(t("Output Resolution"), orDash(s.Settings.OutputResolution))
	row(t("Face"), onOff(t, s.Settings.Face))
	row(t("Hand"), onOff(t, s.Settings.Hand))
	row(t("Multi-threading"), onOff(t, s.Settings.MultiThread))
	row(t("Queue Size"), fmt.Sprintf("%d", s.Settings.QueueSize))
	b.WriteString("\n")

	outputs := []struct{ label, value string }{
		{"JSON", s.Outputs.JSONDir},
		{"Keypoints", s.Outputs.KeypointDir},
		{"Images", s.Outputs.ImagesDir},
		{"Heatmaps", s.Outputs.HeatmapsDir},
		{"Video", s.Outputs.VideoPath},
		{"UDP", s.Outputs.UDPAddr},
		{"Display", s.Outputs.DisplayAddr},
	}
	fmt.Fprintf(&b, "## %s\n\n", t("Outputs"))
	listed := false
	for _, o := range outputs {
		if o.value == "" {
			continue
		}
		if !listed {
			row = table(&b, t("Output"), t("Location"))
			listed = true
		}
		row(t(o.label), "`"+o.value+"`")
	}
	if !listed {
		fmt.Fprintf(&b, "%s\n", t("No outputs were written."))
	}
	b.WriteString("\n---\n\n")

	footer := fmt.Sprintf("%s %s", t("Generated at"), formatTime(s.GeneratedAt))
	if f.version != "" {
		footer += fmt.Sprintf(" (posestream %s)", f.version)
	}
	b.WriteString(footer + "\n")
	return b.String()
}

// table writes a two-column header and returns a row writer.
func table(b *strings.Builder, left, right string) func(string, string) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", left, right)
	return func(k, v string) {
		fmt.Fprintf(b, "| %s | %s |\n", k, v)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05 MST")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}

func formatRate(frames uint64, d time.Duration) string {
	if d <= 0 || frames == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f fps", float64(frames)/d.Seconds())
}

func onOff(t func(string) string, v bool) string {
	if v {
		return t("Enabled")
	}
	return t("Disabled")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// escape keeps a value from breaking the table row.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
