package categories

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads the category file from disk.
type Loader struct {
	filePath string
}

// NewLoader creates a new category loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Load reads and parses the categories file
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read categories file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse categories yaml: %w", err)
	}

	return file, nil
}
