package ports

import (
	"image"
)

// ArtifactSink persists per-frame output artifacts under one location.
type ArtifactSink interface {
	// SaveData writes raw bytes (JSON, YAML) under the given file name.
	SaveData(name string, data []byte) error

	// SaveImage encodes img in the given format and writes it under the
	// given base name; the format's extension is appended.
	SaveImage(name string, img image.Image, format ImageFormat) error
}

// DatagramSender delivers small messages to a network peer.
type DatagramSender interface {
	// Send transmits one message.
	Send(data []byte) error

	// Close releases the connection.
	Close() error
}
