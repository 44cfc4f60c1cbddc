package vadpcm

import (
	"errors"
	"math"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func zeroBook(t *testing.T) *Codebook {
	t.Helper()
	book, err := NewCodebook(2, 1, make([]int16, 16))
	assert.NoError(t, err)
	return book
}

// integratorBook predicts every sample as the previous sample, so the output
// is the running sum of the residuals.
func integratorBook(t *testing.T) *Codebook {
	t.Helper()
	coefficients := make([]int16, 8)
	for i := range coefficients {
		coefficients[i] = 1 << coefficientShift
	}
	book, err := NewCodebook(1, 1, coefficients)
	assert.NoError(t, err)
	return book
}

func TestNewCodebook(t *testing.T) {
	book, err := NewCodebook(2, 3, make([]int16, 48))
	assert.NoError(t, err)
	assert.Equal(t, 2, book.Order)
	assert.Equal(t, 3, len(book.Predictors))
	assert.Equal(t, 10, len(book.Predictors[0].Table[7]))
	assert.Equal(t, int32(2048), book.Predictors[2].Table[0][2])

	tests := []struct {
		name      string
		order     int
		predictor int
		count     int
	}{
		{"coefficient count", 2, 3, 47},
		{"zero order", 0, 1, 0},
		{"order too large", 9, 1, 72},
		{"no predictors", 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodebook(tt.order, tt.predictor, make([]int16, tt.count))
			assert.True(t, errors.Is(err, ErrInvalidBook))
		})
	}
}

func TestDecodeADPCMResiduals(t *testing.T) {
	data := []byte{
		0x00, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0,
		0x10, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0,
		0xFF, 0xFF, // incomplete frame
	}

	samples, err := Decode(CodecADPCM, data, zeroBook(t))
	assert.NoError(t, err)
	assert.Equal(t, 32, len(samples))

	expected := []int16{1, 2, 3, 4, 5, 6, 7, -8, -7, -6, -5, -4, -3, -2, -1, 0}
	for i, v := range expected {
		assert.Equal(t, v, samples[i])
		assert.Equal(t, v*2, samples[16+i])
	}
}

func TestDecodeADPCMPrediction(t *testing.T) {
	frame := []byte{0x00, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11}
	data := append(append([]byte{}, frame...), frame...)

	samples, err := Decode(CodecADPCM, data, integratorBook(t))
	assert.NoError(t, err)
	assert.Equal(t, 32, len(samples))
	for i, v := range samples {
		assert.Equal(t, int16(i+1), v)
	}
}

func TestDecodeADPCMClamp(t *testing.T) {
	data := []byte{0xF0, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77, 0x77}

	samples, err := Decode(CodecADPCM, data, integratorBook(t))
	assert.NoError(t, err)
	assert.Equal(t, int16(math.MaxInt16), samples[0])
	assert.Equal(t, int16(math.MaxInt16), samples[15])
}

func TestDecodeSmallADPCM(t *testing.T) {
	data := []byte{0x00, 0x78, 0x00, 0x00, 0xE4}

	samples, err := Decode(CodecSmallADPCM, data, zeroBook(t))
	assert.NoError(t, err)
	assert.Equal(t, 16, len(samples))
	assert.Equal(t, int16(1), samples[0])
	assert.Equal(t, int16(-1), samples[1])
	assert.Equal(t, int16(-2), samples[2])
	assert.Equal(t, int16(0), samples[3])
	assert.Equal(t, int16(-1), samples[12])
	assert.Equal(t, int16(-2), samples[13])
	assert.Equal(t, int16(1), samples[14])
	assert.Equal(t, int16(0), samples[15])
}

func TestDecodeS16(t *testing.T) {
	samples, err := Decode(CodecS16, []byte{0x12, 0x34, 0xFF, 0xFE, 0x01}, nil)
	assert.NoError(t, err)
	assert.Equal(t, []int16{0x1234, -2}, samples)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(1, []byte{0x00}, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedCodec))

	_, err = Decode(CodecADPCM, make([]byte, frameSize), nil)
	assert.True(t, errors.Is(err, ErrInvalidBook))

	data := []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err = Decode(CodecADPCM, data, zeroBook(t))
	assert.True(t, errors.Is(err, ErrInvalidBook))
	assert.ErrorContains(t, err, "predictor 1")
}
