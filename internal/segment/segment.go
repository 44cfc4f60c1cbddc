// Package segment provides bounds-checked big-endian access to raw ROM segments.
package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Well known segment names.
const (
	Code      = "code"
	AudioBank = "Audiobank"
	AudioData = "Audiotable"
	AudioSeq  = "Audioseq"
)

// ErrCorruptInput is returned for any read outside of a segment.
var ErrCorruptInput = errors.New("corrupt input")

// CorruptInputError describes the first out-of-bounds access of a decode job.
type CorruptInputError struct {
	Segment string
	Offset  int64
	Size    int
	Length  int
}

func (e *CorruptInputError) Error() string {
	return fmt.Sprintf("corrupt input: reading %d bytes at offset 0x%X of segment '%s' with length 0x%X",
		e.Size, e.Offset, e.Segment, e.Length)
}

// Is makes the error match ErrCorruptInput.
func (e *CorruptInputError) Is(target error) bool {
	return target == ErrCorruptInput
}

// Segment is a named, read-only byte buffer.
type Segment struct {
	Name string
	Data []byte
}

// New returns a new segment.
func New(name string, data []byte) *Segment {
	return &Segment{
		Name: name,
		Data: data,
	}
}

// Len returns the size of the segment in bytes.
func (s *Segment) Len() int {
	return len(s.Data)
}

// Check returns an error if size bytes at offset are not inside the segment.
func (s *Segment) Check(offset int64, size int) error {
	if offset < 0 || size < 0 || offset+int64(size) > int64(len(s.Data)) {
		return &CorruptInputError{
			Segment: s.Name,
			Offset:  offset,
			Size:    size,
			Length:  len(s.Data),
		}
	}
	return nil
}

// U8 reads a byte.
func (s *Segment) U8(offset int64) (uint8, error) {
	if err := s.Check(offset, 1); err != nil {
		return 0, err
	}
	return s.Data[offset], nil
}

// U16 reads a big-endian unsigned 16 bit value.
func (s *Segment) U16(offset int64) (uint16, error) {
	if err := s.Check(offset, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(s.Data[offset:]), nil
}

// I16 reads a big-endian signed 16 bit value.
func (s *Segment) I16(offset int64) (int16, error) {
	v, err := s.U16(offset)
	return int16(v), err
}

// U32 reads a big-endian unsigned 32 bit value.
func (s *Segment) U32(offset int64) (uint32, error) {
	if err := s.Check(offset, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(s.Data[offset:]), nil
}

// I32 reads a big-endian signed 32 bit value.
func (s *Segment) I32(offset int64) (int32, error) {
	v, err := s.U32(offset)
	return int32(v), err
}

// F32 reads a big-endian IEEE 754 single precision value.
func (s *Segment) F32(offset int64) (float32, error) {
	v, err := s.U32(offset)
	return math.Float32frombits(v), err
}

// Bytes returns a copy of size bytes starting at offset.
func (s *Segment) Bytes(offset int64, size int) ([]byte, error) {
	if err := s.Check(offset, size); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	copy(buf, s.Data[offset:])
	return buf, nil
}

// Set holds the segments of one extraction job, indexed by name.
type Set map[string]*Segment

// Get returns the named segment or an error if it was not loaded.
func (s Set) Get(name string) (*Segment, error) {
	seg, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("segment '%s' not loaded", name)
	}
	return seg, nil
}

// Add adds a segment to the set, replacing one of the same name.
func (s Set) Add(seg *Segment) {
	s[seg.Name] = seg
}
