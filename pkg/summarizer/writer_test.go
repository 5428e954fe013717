package summarizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/user/posestream/pkg/mocks"
)

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(s *Summary) string {
		return "summary for " + s.Settings.Source
	}), fs)

	if err := w.Write("reports/run.md", &Summary{Settings: Settings{Source: "dir"}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, ok := fs.GetFile("reports/run.md")
	if !ok {
		t.Fatal("expected summary file")
	}
	if string(data) != "summary for dir" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWriter_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(path string, data []byte) error { return errors.New("disk full") }

	err := NewWriter(NewMarkdownFormatter(), fs).Write("run.md", NewSummary())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected wrapped write error, got %v", err)
	}
}
