package ports

// FileSystem is the storage used by frame sources and result writers.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the file at path with data, creating parent
	// directories as needed. Readers never observe a partial file.
	WriteFile(path string, data []byte) error

	MkdirAll(path string) error

	// ListFiles returns the regular files in dir, sorted by name, whose
	// extension (lower-cased, with dot) is one of exts. An empty exts
	// matches every file.
	ListFiles(dir string, exts ...string) ([]string, error)
}
