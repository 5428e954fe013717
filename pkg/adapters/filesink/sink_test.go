package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/posestream/pkg/mocks"
	"github.com/user/posestream/pkg/ports"
)

var testBaseDir = filepath.Join("out", "json")

func TestSink_SaveData(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	if err := sink.SaveData("000000000001_keypoints.json", []byte(`{"people":[]}`)); err != nil {
		t.Fatalf("SaveData failed: %v", err)
	}

	path := filepath.Join(testBaseDir, "000000000001_keypoints.json")
	saved, ok := fs.GetFile(path)
	if !ok {
		t.Fatalf("expected file at %s", path)
	}
	if string(saved) != `{"people":[]}` {
		t.Errorf("unexpected content %q", saved)
	}
}

func TestSink_SaveImage(t *testing.T) {
	fs := mocks.NewFileSystem()
	var gotFormat ports.ImageFormat
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			gotFormat = format
			return []byte("jpeg"), nil
		},
	}
	sink := New(testBaseDir, fs, renderer)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := sink.SaveImage("000000000002_rendered", img, ports.FormatJPEG); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	if gotFormat != ports.FormatJPEG {
		t.Errorf("expected JPEG encoding, got %v", gotFormat)
	}
	if _, ok := fs.GetFile(filepath.Join(testBaseDir, "000000000002_rendered.jpg")); !ok {
		t.Errorf("expected image file, got %v", fs.GetAllFiles())
	}
}

func TestSink_EncodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, errors.New("bad image")
		},
	}
	sink := New(testBaseDir, fs, renderer)

	if err := sink.SaveImage("x", image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.FormatPNG); err == nil {
		t.Error("expected error")
	}
}

func TestSink_MkdirOnce(t *testing.T) {
	fs := mocks.NewFileSystem()
	calls := 0
	fs.MkdirAllFunc = func(path string) error {
		calls++
		return errors.New("read-only")
	}
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	for i := 0; i < 3; i++ {
		if err := sink.SaveData("a.json", nil); err == nil {
			t.Error("expected error")
		}
	}
	if calls != 1 {
		t.Errorf("expected one MkdirAll call, got %d", calls)
	}
}
