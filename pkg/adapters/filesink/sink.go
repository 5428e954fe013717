// Package filesink provides a directory-backed artifact sink.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/user/posestream/pkg/ports"
)

// Sink writes artifacts as files under one directory. The directory is
// created on first use.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer

	once   sync.Once
	mkdErr error
}

// New creates a new Sink rooted at baseDir.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Dir returns the directory artifacts are written to.
func (s *Sink) Dir() string {
	return s.baseDir
}

// SaveData writes data to baseDir/name.
func (s *Sink) SaveData(name string, data []byte) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, name), data)
}

// SaveImage encodes img and writes it to baseDir/name.<ext>.
func (s *Sink) SaveImage(name string, img image.Image, format ports.ImageFormat) error {
	data, err := s.renderer.EncodeImage(img, format, 90)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.SaveData(name+"."+format.Extension(), data)
}

func (s *Sink) ensureDir() error {
	s.once.Do(func() {
		if err := s.fs.MkdirAll(s.baseDir); err != nil {
			s.mkdErr = fmt.Errorf("create %s: %w", s.baseDir, err)
		}
	})
	return s.mkdErr
}

var _ ports.ArtifactSink = (*Sink)(nil)
