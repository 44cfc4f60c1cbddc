package audio

import (
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/retroenv/retroextract/internal/segment"
	"golang.org/x/sync/singleflight"
)

const (
	loopStateCount  = 16
	loopStateOffset = 16
	bookDataOffset  = 8
	bookEntryFactor = 8

	sampleSizeMask = 0x00FFFFFF
)

// sampleRef describes the context a sample record is read in: the sample
// bank that supplies the data base pointer and the base offset that loop and
// book pointers are relative to.
type sampleRef struct {
	bankIndex int
	bankEntry TableEntry
	base      int64
}

// sampleCache deduplicates samples by their absolute data offset for the
// lifetime of one decode job. The first decode of an offset wins, concurrent
// callers for the same offset wait for it and share the result.
type sampleCache struct {
	mu      sync.Mutex
	group   singleflight.Group
	entries map[uint32]*SampleEntry
	decodes int
}

func newSampleCache() *sampleCache {
	return &sampleCache{
		entries: make(map[uint32]*SampleEntry),
	}
}

func (c *sampleCache) lookup(offset uint32) (*SampleEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sample, ok := c.entries[offset]
	return sample, ok
}

func (c *sampleCache) get(offset uint32, decode func() (*SampleEntry, error)) (*SampleEntry, error) {
	if sample, ok := c.lookup(offset); ok {
		return sample, nil
	}

	v, err, _ := c.group.Do(strconv.FormatUint(uint64(offset), 16), func() (any, error) {
		// a decode for this offset may have finished between lookup and Do
		if sample, ok := c.lookup(offset); ok {
			return sample, nil
		}

		sample, err := decode()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[offset] = sample
		c.decodes++
		c.mu.Unlock()
		return sample, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SampleEntry), nil
}

// samples returns all cached samples ordered by data offset.
func (c *sampleCache) samples() []*SampleEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	offsets := make([]uint32, 0, len(c.entries))
	for offset := range c.entries {
		offsets = append(offsets, offset)
	}
	slices.Sort(offsets)

	samples := make([]*SampleEntry, 0, len(offsets))
	for _, offset := range offsets {
		samples = append(samples, c.entries[offset])
	}
	return samples
}

func (c *sampleCache) decodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decodes
}

// parseSample decodes the sample record at the given absolute offset of the
// audio bank segment. Samples that were already decoded in this job are
// returned from the cache unchanged.
func (j *job) parseSample(ref sampleRef, offset int64) (*SampleEntry, error) {
	header, err := j.bank.U32(offset)
	if err != nil {
		return nil, fmt.Errorf("reading sample header: %w", err)
	}
	dataPtr, err := j.bank.U32(offset + 4)
	if err != nil {
		return nil, fmt.Errorf("reading sample data pointer: %w", err)
	}
	dataOffset := dataPtr + ref.bankEntry.Ptr

	return j.cache.get(dataOffset, func() (*SampleEntry, error) {
		return j.decodeSample(ref, offset, header, dataOffset)
	})
}

func (j *job) decodeSample(ref sampleRef, offset int64, header, dataOffset uint32) (*SampleEntry, error) {
	sample := &SampleEntry{
		BankID:           ref.bankIndex,
		Codec:            uint8(header>>28) & 0x0F,
		Medium:           uint8(header>>26) & 0x03,
		ReservedBit25:    uint8(header>>25) & 0x01,
		ReservedBit21:    uint8(header>>21) & 0x01,
		SourceDataOffset: dataOffset,
	}

	var err error
	size := int(header & sampleSizeMask)
	sample.Data, err = j.data.Bytes(int64(dataOffset), size)
	if err != nil {
		return nil, fmt.Errorf("reading %d bytes of sample data at 0x%X: %w", size, dataOffset, err)
	}

	loopPtr, err := j.bank.I32(offset + 8)
	if err != nil {
		return nil, fmt.Errorf("reading loop pointer: %w", err)
	}
	bookPtr, err := j.bank.I32(offset + 12)
	if err != nil {
		return nil, fmt.Errorf("reading book pointer: %w", err)
	}

	sample.Loop, err = j.parseLoop(int64(loopPtr) + ref.base)
	if err != nil {
		return nil, fmt.Errorf("reading sample loop: %w", err)
	}
	sample.Book, err = j.parseBook(int64(bookPtr) + ref.base)
	if err != nil {
		return nil, fmt.Errorf("reading sample book: %w", err)
	}

	sample.Name = j.names.Name(ref.bankIndex, dataOffset)
	return sample, nil
}

func (j *job) parseLoop(offset int64) (LoopInfo, error) {
	var loop LoopInfo
	var err error

	if loop.Start, err = j.bank.I32(offset); err != nil {
		return loop, err
	}
	if loop.End, err = j.bank.I32(offset + 4); err != nil {
		return loop, err
	}
	if loop.Count, err = j.bank.I32(offset + 8); err != nil {
		return loop, err
	}
	if loop.Count == 0 {
		return loop, nil
	}

	loop.States = make([]int16, loopStateCount)
	for i := range loopStateCount {
		loop.States[i], err = j.bank.I16(offset + loopStateOffset + int64(i)*2)
		if err != nil {
			return loop, err
		}
	}
	return loop, nil
}

func (j *job) parseBook(offset int64) (PredictorBook, error) {
	var book PredictorBook
	var err error

	if book.Order, err = j.bank.I32(offset); err != nil {
		return book, err
	}
	if book.PredictorCount, err = j.bank.I32(offset + 4); err != nil {
		return book, err
	}

	// the coefficients of the declared shape must fit into the segment
	maxCount := int64(j.bank.Len()) / 2
	if book.Order < 0 || book.PredictorCount < 0 ||
		(book.Order != 0 && int64(book.PredictorCount) > maxCount/int64(book.Order)/bookEntryFactor) {
		return book, fmt.Errorf("book at 0x%X with order %d and %d predictors exceeds segment '%s': %w",
			offset, book.Order, book.PredictorCount, j.bank.Name, segment.ErrCorruptInput)
	}

	count := int64(book.PredictorCount) * int64(book.Order) * bookEntryFactor
	if err = j.bank.Check(offset+bookDataOffset, int(count*2)); err != nil {
		return book, err
	}

	book.Coefficients = make([]int16, count)
	for i := range book.Coefficients {
		book.Coefficients[i], err = j.bank.I16(offset + bookDataOffset + int64(i)*2)
		if err != nil {
			return book, err
		}
	}
	return book, nil
}
