package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retrogolib/assert"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeSegment(t, dir, segment.Code, []byte{0x01, 0x02})
	writeSegment(t, dir, segment.AudioSeq, []byte{0xD3})

	t.Run("load segments", func(t *testing.T) {
		set, err := New().Load(dir, []string{segment.Code, segment.AudioSeq, segment.Code})
		assert.NoError(t, err)
		assert.Equal(t, 2, len(set))

		code, err := set.Get(segment.Code)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x01, 0x02}, code.Data)
		assert.Equal(t, segment.Code, code.Name)
	})

	t.Run("error on missing segment", func(t *testing.T) {
		_, err := New().Load(dir, []string{segment.Code, segment.AudioBank})
		assert.True(t, errors.Is(err, ErrSegmentMissing))
		assert.ErrorContains(t, err, segment.AudioBank)
	})

	t.Run("error on non-existent directory", func(t *testing.T) {
		_, err := New().Load(filepath.Join(dir, "missing"), []string{segment.Code})
		assert.Error(t, err)
	})

	t.Run("error on file instead of directory", func(t *testing.T) {
		_, err := New().Load(filepath.Join(dir, segment.Code), []string{segment.Code})
		assert.ErrorContains(t, err, "not a directory")
	})
}

func TestLoadFromReader(t *testing.T) {
	seg, err := New().LoadFromReader(bytes.NewReader([]byte{0xAA, 0xBB}), "message_data_static")
	assert.NoError(t, err)
	assert.Equal(t, "message_data_static", seg.Name)
	assert.Equal(t, 2, seg.Len())
}

func writeSegment(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
		t.Fatalf("Failed to create segment file: %v", err)
	}
}
