package mocks

import (
	"image"
	"sort"
	"sync"

	"github.com/user/posestream/pkg/ports"
)

// ArtifactSink is a mock implementation of ports.ArtifactSink.
type ArtifactSink struct {
	SaveDataFunc  func(name string, data []byte) error
	SaveImageFunc func(name string, img image.Image, format ports.ImageFormat) error

	mu     sync.RWMutex
	data   map[string][]byte
	images map[string]image.Image
}

// NewArtifactSink creates a new mock ArtifactSink.
func NewArtifactSink() *ArtifactSink {
	return &ArtifactSink{
		data:   make(map[string][]byte),
		images: make(map[string]image.Image),
	}
}

func (m *ArtifactSink) SaveData(name string, data []byte) error {
	if m.SaveDataFunc != nil {
		return m.SaveDataFunc(name, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = append([]byte(nil), data...)
	return nil
}

func (m *ArtifactSink) SaveImage(name string, img image.Image, format ports.ImageFormat) error {
	if m.SaveImageFunc != nil {
		return m.SaveImageFunc(name, img, format)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[name+"."+format.Extension()] = img
	return nil
}

// Data returns the bytes saved under name.
func (m *ArtifactSink) Data(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.data[name]
	return d, ok
}

// Names returns every saved data and image name, sorted.
func (m *ArtifactSink) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data)+len(m.images))
	for k := range m.data {
		names = append(names, k)
	}
	for k := range m.images {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var _ ports.ArtifactSink = (*ArtifactSink)(nil)

// DatagramSender is a mock implementation of ports.DatagramSender.
type DatagramSender struct {
	SendFunc func(data []byte) error

	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (m *DatagramSender) Send(data []byte) error {
	if m.SendFunc != nil {
		return m.SendFunc(data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, append([]byte(nil), data...))
	return nil
}

func (m *DatagramSender) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Messages returns every sent message.
func (m *DatagramSender) Messages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.messages...)
}

// Closed reports whether Close was called.
func (m *DatagramSender) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.DatagramSender = (*DatagramSender)(nil)
