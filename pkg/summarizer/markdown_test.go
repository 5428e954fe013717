package summarizer

import (
	"strings"
	"testing"
	"time"
)

func sampleSummary() *Summary {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Summary{
		GeneratedAt: start.Add(11 * time.Second),
		Run: RunInfo{
			StartedAt:  start,
			FinishedAt: start.Add(10 * time.Second),
			StopReason: "end of stream",
		},
		Frames: FrameInfo{Accepted: 300, Processed: 300, LastFrame: 300},
		Settings: Settings{
			Source:           "pattern",
			InputWidth:       1280,
			InputHeight:      720,
			FPS:              30,
			Model:            "BODY_25",
			NetResolution:    "-1x368",
			OutputResolution: "-1x-1",
			Body:             true,
			Hand:             true,
			MultiThread:      true,
			QueueSize:        8,
		},
		Outputs: OutputInfo{JSONDir: "out/json", VideoPath: "out/run.mp4"},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(sampleSummary())

	checks := []string{
		"# Run Summary",
		"| Duration | 10.00 s |",
		"| Stop Reason | end of stream |",
		"| Processed | 300 |",
		"| Throughput | 30.00 fps |",
		"1280x720 @ 30.0 fps",
		"| Pose Model | BODY_25 |",
		"| Face | Disabled |",
		"| Hand | Enabled |",
		"| JSON | `out/json` |",
		"| Video | `out/run.mp4` |",
		"2026-03-01 10:00:11 UTC",
	}
	for _, want := range checks {
		if !strings.Contains(result, want) {
			t.Errorf("expected output to contain %q\n%s", want, result)
		}
	}
	if strings.Contains(result, "| Error |") {
		t.Error("expected no error row on a graceful run")
	}
	if strings.Contains(result, "| UDP |") {
		t.Error("expected disabled outputs to be omitted")
	}
}

func TestMarkdownFormatter_Error(t *testing.T) {
	s := sampleSummary()
	s.Run.StopReason = "source failure"
	s.Run.Error = "pull: frame pull timed out | retry\nlater"

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, `| Error | pull: frame pull timed out \| retry later |`) {
		t.Errorf("expected escaped error row, got\n%s", result)
	}
}

func TestMarkdownFormatter_NoOutputs(t *testing.T) {
	s := sampleSummary()
	s.Outputs = OutputInfo{}
	s.Settings.Body = false

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "No outputs were written.") {
		t.Error("expected the no-output note")
	}
	if !strings.Contains(result, "| Pose Model | Disabled |") {
		t.Error("expected disabled pose model")
	}
	if strings.Contains(result, "Net Resolution") {
		t.Error("expected net resolution to be omitted without body estimation")
	}
}

func TestMarkdownFormatter_EmptyRun(t *testing.T) {
	result := NewMarkdownFormatter().Format(&Summary{})
	if !strings.Contains(result, "| Duration | - |") {
		t.Error("expected a dash for an unknown duration")
	}
	if !strings.Contains(result, "| Throughput | - |") {
		t.Error("expected a dash for an unknown throughput")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Run Summary":   "実行サマリー",
			"Processed":     "処理済み",
			"end of stream": "ストリーム終了",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(sampleSummary())

	for _, want := range []string{"実行サマリー", "処理済み", "ストリーム終了"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(sampleSummary())
	if !strings.Contains(result, "posestream v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "-"},
		{250 * time.Millisecond, "250 ms"},
		{1500 * time.Millisecond, "1.50 s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
