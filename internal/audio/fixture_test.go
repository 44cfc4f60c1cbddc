package audio

import (
	"encoding/binary"
	"math"

	"github.com/retroenv/retroextract/internal/segment"
)

// buffer is a fixed size big-endian byte buffer for building test segments.
type buffer struct {
	data []byte
}

func newBuffer(size int) *buffer {
	return &buffer{data: make([]byte, size)}
}

func (b *buffer) u8(offset int, v uint8) *buffer {
	b.data[offset] = v
	return b
}

func (b *buffer) u16(offset int, v uint16) *buffer {
	binary.BigEndian.PutUint16(b.data[offset:], v)
	return b
}

func (b *buffer) u32(offset int, v uint32) *buffer {
	binary.BigEndian.PutUint32(b.data[offset:], v)
	return b
}

func (b *buffer) i16(offset int, v int16) *buffer {
	return b.u16(offset, uint16(v))
}

func (b *buffer) f32(offset int, v float32) *buffer {
	return b.u32(offset, math.Float32bits(v))
}

func (b *buffer) entry(offset int, e TableEntry) *buffer {
	b.u32(offset, e.Ptr)
	b.u32(offset+4, e.Size)
	b.u8(offset+8, e.Medium)
	b.u8(offset+9, e.CachePolicy)
	b.u16(offset+10, e.Data1)
	b.u16(offset+12, e.Data2)
	b.u16(offset+14, e.Data3)
	return b
}

func (b *buffer) table(offset int, entries ...TableEntry) *buffer {
	b.u16(offset, uint16(len(entries)))
	for i, e := range entries {
		b.entry(offset+16+i*16, e)
	}
	return b
}

// Layout of the test audio bank. All font offsets are relative to fontBase.
const (
	fontBase = 0x10
	fontSize = 0x240

	drumTable   = 0x40
	sfxTable    = 0x50
	instrument0 = 0x60
	instrument2 = 0x80
	drum0       = 0x100
	sampleA     = 0x140
	sampleB     = 0x160
	envelope    = 0x180
	loopA       = 0x1A0
	loopB       = 0x1E0
	book        = 0x200

	sampleBankPtr = 0x100
	sampleDataA   = 0x00
	sampleDataB   = 0x20
	sampleSizeA   = 0x10
	sampleSizeB   = 0x09

	sequenceTableOffset     = 0x40
	sampleBankTableOffset   = 0x90
	sequenceFontTableOffset = 0xC0
	// the font table is placed last so that it can hold any number of entries
	soundFontTableOffset = 0xD0
)

var testFontEntry = TableEntry{
	Ptr:         fontBase,
	Size:        fontSize,
	Medium:      2,
	CachePolicy: 2,
	Data1:       0x00FF,
	Data2:       0x0302,
	Data3:       0x0002,
}

var testOffsets = Offsets{
	SoundFontTable:    soundFontTableOffset,
	SequenceTable:     sequenceTableOffset,
	SampleBankTable:   sampleBankTableOffset,
	SequenceFontTable: sequenceFontTableOffset,
}

func soundEntry(b *buffer, offset int, samplePtr uint32, tuning float32) {
	b.u32(offset, samplePtr)
	b.f32(offset+4, tuning)
}

func buildAudioBank() *buffer {
	b := newBuffer(fontBase + fontSize + 0x20)
	at := func(offset int) int { return fontBase + offset }

	b.u32(at(0), drumTable)
	b.u32(at(4), sfxTable)
	b.u32(at(8), instrument0)
	b.u32(at(12), 0)
	b.u32(at(16), instrument2)

	b.u32(at(drumTable), drum0)
	b.u32(at(drumTable+4), 0)

	soundEntry(b, at(sfxTable), sampleA, 1.0)
	soundEntry(b, at(sfxTable+8), 0, 0)

	// high notes sound is ignored for a normal range ending at 0x7F
	b.u8(at(instrument0), 1).u8(at(instrument0+1), 0x10).u8(at(instrument0+2), 0x7F).u8(at(instrument0+3), 0xF0)
	b.u32(at(instrument0+4), envelope)
	soundEntry(b, at(instrument0+8), sampleA, 0.5)
	soundEntry(b, at(instrument0+16), sampleA, 1.0)
	soundEntry(b, at(instrument0+24), sampleB, 2.0)

	b.u8(at(instrument2+2), 0x50).u8(at(instrument2+3), 0x10)
	b.u32(at(instrument2+4), envelope)
	soundEntry(b, at(instrument2+8), 0, 0)
	soundEntry(b, at(instrument2+16), sampleB, 1.0)
	soundEntry(b, at(instrument2+24), sampleB, 2.0)

	b.u8(at(drum0), 0xF0).u8(at(drum0+1), 0x40).u8(at(drum0+2), 1)
	soundEntry(b, at(drum0+4), sampleA, 1.5)
	b.u32(at(drum0+12), envelope)

	b.u32(at(sampleA), sampleSizeA)
	b.u32(at(sampleA+4), sampleDataA)
	b.u32(at(sampleA+8), loopA)
	b.u32(at(sampleA+12), book)

	b.u32(at(sampleB), 3<<28|1<<26|1<<25|sampleSizeB)
	b.u32(at(sampleB+4), sampleDataB)
	b.u32(at(sampleB+8), loopB)
	b.u32(at(sampleB+12), book)

	b.i16(at(envelope), 10).i16(at(envelope+2), 0)
	b.i16(at(envelope+4), -1).i16(at(envelope+6), 0)

	b.u32(at(loopA), 0).u32(at(loopA+4), 0x20).u32(at(loopA+8), 0xFFFFFFFF)
	for i := range 16 {
		b.i16(at(loopA+16+i*2), int16(i+1))
	}
	b.u32(at(loopB), 0).u32(at(loopB+4), 0x10).u32(at(loopB+8), 0)

	b.u32(at(book), 2).u32(at(book+4), 1)
	for i := range 16 {
		b.i16(at(book+8+i*2), int16(-i))
	}
	return b
}

func buildCode(fonts int) *buffer {
	b := newBuffer(soundFontTableOffset + 16 + fonts*16)

	sequences := []TableEntry{
		{Ptr: 0, Size: 4, Medium: 2},
		{Ptr: 0, Size: 0},
		{Ptr: 4, Size: 2, Medium: 2, CachePolicy: 1},
	}
	b.table(sequenceTableOffset, sequences...)
	b.table(sampleBankTableOffset, TableEntry{Ptr: sampleBankPtr, Size: 0x100, Medium: 2, CachePolicy: 4})

	b.u16(sequenceFontTableOffset, 6).u16(sequenceFontTableOffset+2, 8).u16(sequenceFontTableOffset+4, 6)
	b.u8(sequenceFontTableOffset+6, 1).u8(sequenceFontTableOffset+7, 0)
	b.u8(sequenceFontTableOffset+8, 2).u8(sequenceFontTableOffset+9, 0).u8(sequenceFontTableOffset+10, 1)

	entries := make([]TableEntry, fonts)
	for i := range entries {
		entries[i] = testFontEntry
	}
	b.table(soundFontTableOffset, entries...)
	return b
}

func buildAudioData() *buffer {
	b := newBuffer(0x200)
	for i := range sampleSizeA {
		b.u8(sampleBankPtr+sampleDataA+i, uint8(0xA0+i))
	}
	for i := range sampleSizeB {
		b.u8(sampleBankPtr+sampleDataB+i, uint8(0xB0+i))
	}
	return b
}

// buildSegments returns a complete segment set with the given number of
// identical sound fonts and the table offsets to decode it with.
func buildSegments(fonts int) (segment.Set, Offsets) {
	set := segment.Set{}
	set.Add(segment.New(segment.Code, buildCode(fonts).data))
	set.Add(segment.New(segment.AudioBank, buildAudioBank().data))
	set.Add(segment.New(segment.AudioData, buildAudioData().data))
	set.Add(segment.New(segment.AudioSeq, []byte{0xD3, 0x20, 0xD5, 0xFF, 0xAA, 0xBB}))

	return set, testOffsets
}
