package audio

import (
	"errors"
	"sync"
	"testing"

	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retroextract/internal/symbols"
	"github.com/retroenv/retrogolib/assert"
)

func newTestJob(bank, data []byte) *job {
	return &job{
		bank:  segment.New(segment.AudioBank, bank),
		data:  segment.New(segment.AudioData, data),
		names: symbols.NewNames(),
		cache: newSampleCache(),
	}
}

func TestParseBook(t *testing.T) {
	b := newBuffer(8 + 48*2)
	b.u32(0, 2).u32(4, 3)
	for i := range 48 {
		b.i16(8+i*2, int16(i*100))
	}
	j := newTestJob(b.data, nil)

	book, err := j.parseBook(0)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), book.Order)
	assert.Equal(t, int32(3), book.PredictorCount)
	assert.Equal(t, 48, len(book.Coefficients))
	assert.Equal(t, int16(4700), book.Coefficients[47])

	// coefficient data beyond the segment end
	j = newTestJob(b.data[:8+47*2], nil)
	_, err = j.parseBook(0)
	assert.True(t, errors.Is(err, segment.ErrCorruptInput))

	shapes := []struct {
		name           string
		order          uint32
		predictorCount uint32
	}{
		{"overflowing coefficient count", 0x40000000, 0x40000000},
		{"negative order", 0xFFFFFFFF, 1},
		{"negative predictor count", 2, 0x80000000},
		{"count larger than segment", 2, 0x1000},
	}
	for _, tt := range shapes {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuffer(16)
			b.u32(0, tt.order).u32(4, tt.predictorCount)

			_, err := newTestJob(b.data, nil).parseBook(0)
			assert.True(t, errors.Is(err, segment.ErrCorruptInput))
		})
	}
}

func TestParseLoop(t *testing.T) {
	b := newBuffer(16 + 32)
	b.u32(0, 4).u32(4, 0x40).u32(8, 0)
	for i := range 16 {
		b.i16(16+i*2, int16(-i))
	}
	j := newTestJob(b.data, nil)

	loop, err := j.parseLoop(0)
	assert.NoError(t, err)
	assert.Equal(t, int32(4), loop.Start)
	assert.Equal(t, int32(0x40), loop.End)
	assert.Empty(t, loop.States)

	b.u32(8, 3)
	loop, err = j.parseLoop(0)
	assert.NoError(t, err)
	assert.Equal(t, int32(3), loop.Count)
	assert.Equal(t, 16, len(loop.States))
	assert.Equal(t, int16(-15), loop.States[15])

	// the state array is always read in full
	j = newTestJob(b.data[:16+30], nil)
	_, err = j.parseLoop(0)
	assert.True(t, errors.Is(err, segment.ErrCorruptInput))
}

func TestSampleCacheDecodesOnce(t *testing.T) {
	cache := newSampleCache()

	var mu sync.Mutex
	calls := 0
	decode := func() (*SampleEntry, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return &SampleEntry{SourceDataOffset: 0x40}, nil
	}

	var wg sync.WaitGroup
	results := make([]*SampleEntry, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sample, err := cache.get(0x40, decode)
			if err == nil {
				results[i] = sample
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.decodeCount())
	for _, sample := range results {
		assert.True(t, sample == results[0])
	}
}

func TestSampleCacheErrorNotStored(t *testing.T) {
	cache := newSampleCache()

	_, err := cache.get(0x10, func() (*SampleEntry, error) {
		return nil, segment.ErrCorruptInput
	})
	assert.Error(t, err)

	sample, err := cache.get(0x10, func() (*SampleEntry, error) {
		return &SampleEntry{}, nil
	})
	assert.NoError(t, err)
	assert.NotNil(t, sample)
	assert.Equal(t, 1, len(cache.samples()))
}
