// Package vadpcm decodes raw sample data to signed 16 bit PCM.
package vadpcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Sample codecs as stored in bits 31..28 of a sample header.
const (
	CodecADPCM      = 0
	CodecSmallADPCM = 3
	CodecS16        = 5
)

const (
	predictorSize  = 8
	frameSamples   = 16
	frameSize      = 9
	smallFrameSize = 5
	maxOrder       = 8

	// coefficients are 5.11 fixed point values
	coefficientShift = 11
)

var (
	// ErrUnsupportedCodec is returned for sample codecs that can not be converted to PCM.
	ErrUnsupportedCodec = errors.New("unsupported codec")
	// ErrInvalidBook is returned for a predictor book that does not match its declared shape.
	ErrInvalidBook = errors.New("invalid predictor book")
)

// Predictor is one expanded predictor of a codebook. Row k holds the order
// coefficients for output sample k followed by the contributions of the
// previous residuals of the same half frame.
type Predictor struct {
	Table [predictorSize][]int32
}

// Codebook is an expanded predictor book ready for decoding.
type Codebook struct {
	Predictors []Predictor
	Order      int
}

// NewCodebook expands the raw book coefficients of order*predictorCount*8
// values into decoding tables.
func NewCodebook(order, predictorCount int, coefficients []int16) (*Codebook, error) {
	if order < 1 || order > maxOrder || predictorCount < 1 {
		return nil, fmt.Errorf("order %d with %d predictors: %w", order, predictorCount, ErrInvalidBook)
	}
	if expected := order * predictorCount * predictorSize; len(coefficients) != expected {
		return nil, fmt.Errorf("expected %d coefficients but got %d: %w", expected, len(coefficients), ErrInvalidBook)
	}

	book := &Codebook{
		Predictors: make([]Predictor, predictorCount),
		Order:      order,
	}

	for i := range book.Predictors {
		table := &book.Predictors[i].Table
		for k := range predictorSize {
			table[k] = make([]int32, order+predictorSize)
		}

		for j := range order {
			for k := range predictorSize {
				table[k][j] = int32(coefficients[i*order*predictorSize+j*predictorSize+k])
			}
		}

		for k := 1; k < predictorSize; k++ {
			table[k][order] = table[k-1][order-1]
		}
		table[0][order] = 1 << coefficientShift

		for k := 1; k < predictorSize; k++ {
			for j := k; j < predictorSize; j++ {
				table[j][k+order] = table[j-k][order]
			}
		}
	}

	return book, nil
}

// Decode converts the sample data of the given codec to PCM samples. The
// ADPCM codecs require a codebook, trailing bytes that do not form a complete
// frame are ignored.
func Decode(codec uint8, data []byte, book *Codebook) ([]int16, error) {
	switch codec {
	case CodecADPCM:
		return decodeFrames(data, book, frameSize, unpack4)
	case CodecSmallADPCM:
		return decodeFrames(data, book, smallFrameSize, unpack2)
	case CodecS16:
		return decodeS16(data), nil
	default:
		return nil, fmt.Errorf("codec %d: %w", codec, ErrUnsupportedCodec)
	}
}

func decodeS16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.BigEndian.Uint16(data[i*2:]))
	}
	return samples
}

// unpackFunc reads the 16 scaled residuals of one frame.
type unpackFunc func(data []byte, scale int32, residuals *[frameSamples]int32)

func unpack4(data []byte, scale int32, residuals *[frameSamples]int32) {
	for i := range frameSamples / 2 {
		b := data[i]
		residuals[i*2] = signExtend(int32(b>>4), 4) * scale
		residuals[i*2+1] = signExtend(int32(b&0x0F), 4) * scale
	}
}

func unpack2(data []byte, scale int32, residuals *[frameSamples]int32) {
	for i := range frameSamples / 4 {
		b := data[i]
		for j := range 4 {
			v := int32(b>>(6-j*2)) & 0x03
			residuals[i*4+j] = signExtend(v, 2) * scale
		}
	}
}

func signExtend(v int32, bits uint) int32 {
	if v >= 1<<(bits-1) {
		return v - 1<<bits
	}
	return v
}

func decodeFrames(data []byte, book *Codebook, size int, unpack unpackFunc) ([]int16, error) {
	if book == nil {
		return nil, fmt.Errorf("missing codebook: %w", ErrInvalidBook)
	}

	frames := len(data) / size
	samples := make([]int16, 0, frames*frameSamples)

	var state [frameSamples]int32
	var residuals [frameSamples]int32
	for f := range frames {
		frame := data[f*size : (f+1)*size]
		header := frame[0]
		scale := int32(1) << (header >> 4)
		index := int(header & 0x0F)
		if index >= len(book.Predictors) {
			return nil, fmt.Errorf("frame %d uses predictor %d of %d: %w", f, index, len(book.Predictors), ErrInvalidBook)
		}

		unpack(frame[1:], scale, &residuals)
		decodeFrame(book.Predictors[index].Table, book.Order, &residuals, &state)

		for _, v := range state {
			samples = append(samples, clamp16(v))
		}
	}
	return samples, nil
}

// decodeFrame predicts the 16 samples of a frame in two halves of 8, each
// half using the last order outputs before it as history. state holds the
// previous frame's output on entry and is replaced by this frame's output.
func decodeFrame(table [predictorSize][]int32, order int, residuals, state *[frameSamples]int32) {
	var in [maxOrder + predictorSize]int32

	for half := range 2 {
		history := frameSamples - order
		if half == 1 {
			history = predictorSize - order
		}
		for i := range order {
			in[i] = state[history+i]
		}

		for i := range predictorSize {
			ind := half*predictorSize + i
			in[order+i] = residuals[ind]
			state[ind] = innerProduct(table[i][:order+i], in[:order+i]) + residuals[ind]
		}
	}
}

// innerProduct returns the dot product divided by 2048, rounded down.
func innerProduct(a, b []int32) int32 {
	var sum int64
	for i := range a {
		sum += int64(a[i]) * int64(b[i])
	}
	return int32(sum >> coefficientShift)
}

func clamp16(v int32) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}
