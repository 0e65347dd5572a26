package storage

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed sample/chamai-checklist.json
var sampleDefinition []byte

// SampleDefinition returns the bundled example checklist.
func SampleDefinition() []byte {
	out := make([]byte, len(sampleDefinition))
	copy(out, sampleDefinition)
	return out
}

// WriteSampleDefinition writes the bundled checklist to path unless a file already exists there.
// It reports whether a file was written.
func WriteSampleDefinition(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("failed to create definition directory: %w", err)
	}
	if err := os.WriteFile(path, sampleDefinition, 0600); err != nil {
		return false, fmt.Errorf("failed to write sample definition: %w", err)
	}
	return true, nil
}
