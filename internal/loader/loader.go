// Package loader handles segment file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/retroenv/retroextract/internal/segment"
)

// ErrSegmentMissing is returned when a required segment file does not exist.
var ErrSegmentMissing = errors.New("segment file missing")

// Loader handles loading extracted ROM segment files from disk.
type Loader struct{}

// New creates a new segment loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the segment files with the given names from a directory.
// Every segment file is named like the segment, without extension.
func (l *Loader) Load(dir string, names []string) (segment.Set, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("accessing segment directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("segment path %s is not a directory", dir)
	}

	set := segment.Set{}
	for _, name := range names {
		if _, ok := set[name]; ok {
			continue
		}

		seg, err := l.LoadFile(filepath.Join(dir, name), name)
		if err != nil {
			return nil, err
		}
		set.Add(seg)
	}
	return set, nil
}

// LoadFile reads a single segment file.
func (l *Loader) LoadFile(path, name string) (*segment.Segment, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("segment '%s': %w", name, ErrSegmentMissing)
		}
		return nil, fmt.Errorf("opening segment file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return l.LoadFromReader(file, name)
}

// LoadFromReader reads a segment from a reader.
// This is useful for testing and programmatic usage where the data is already in memory.
func (l *Loader) LoadFromReader(r io.Reader, name string) (*segment.Segment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading segment '%s': %w", name, err)
	}
	return segment.New(name, data), nil
}
