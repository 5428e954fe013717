package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads options from a YAML file on top of Defaults. Keys are
// the option names grouped by section; unknown keys are rejected.
func LoadFile(path string) (Options, error) {
	opts := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}

	if err := Decode(data, &opts); err != nil {
		return opts, fmt.Errorf("%s: %w", path, err)
	}

	return opts, nil
}

// Decode overlays YAML data onto opts.
func Decode(data []byte, opts *Options) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(opts)
}
