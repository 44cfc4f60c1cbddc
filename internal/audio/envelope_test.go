package audio

import (
	"errors"
	"testing"

	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseEnvelope(t *testing.T) {
	data := []byte{0x00, 0x0A, 0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0x12, 0x34}
	bank := segment.New(segment.AudioBank, data)

	steps, err := ParseEnvelope(bank, 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(steps))
	assert.Equal(t, EnvelopeStep{Delay: 10, Arg: 0}, steps[0])
	assert.Equal(t, EnvelopeStep{Delay: -1, Arg: 0}, steps[1])

	steps, err = ParseEnvelope(bank, 4)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(steps))
}

func TestParseEnvelopeMissingEnd(t *testing.T) {
	data := []byte{0x00, 0x0A, 0x00, 0x01, 0x00, 0x02, 0x00, 0x03}
	bank := segment.New(segment.AudioBank, data)

	_, err := ParseEnvelope(bank, 0)
	assert.True(t, errors.Is(err, segment.ErrCorruptInput))
	assert.ErrorContains(t, err, "envelope step 2")
}
