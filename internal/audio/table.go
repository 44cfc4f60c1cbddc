package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/retroenv/retroextract/internal/segment"
)

const (
	tableHeaderSize = 16
	tableEntrySize  = 16
)

// Table is a decoded fixed stride audio table.
type Table []TableEntry

// ParseTable reads the audio table at the given offset of the code segment:
// a 16 bit entry count at base+0 followed by count 16 byte records at base+16.
func ParseTable(code *segment.Segment, base int64) (Table, error) {
	count, err := code.U16(base)
	if err != nil {
		return nil, fmt.Errorf("reading table entry count: %w", err)
	}

	table := make(Table, 0, count)
	offset := base + tableHeaderSize
	for i := range int(count) {
		entry, err := parseTableEntry(code, offset)
		if err != nil {
			return nil, fmt.Errorf("reading table entry %d: %w", i, err)
		}
		table = append(table, entry)
		offset += tableEntrySize
	}
	return table, nil
}

func parseTableEntry(code *segment.Segment, offset int64) (TableEntry, error) {
	record, err := code.Bytes(offset, tableEntrySize)
	if err != nil {
		return TableEntry{}, err
	}

	return TableEntry{
		Ptr:         binary.BigEndian.Uint32(record[0:]),
		Size:        binary.BigEndian.Uint32(record[4:]),
		Medium:      record[8],
		CachePolicy: record[9],
		Data1:       binary.BigEndian.Uint16(record[10:]),
		Data2:       binary.BigEndian.Uint16(record[12:]),
		Data3:       binary.BigEndian.Uint16(record[14:]),
	}, nil
}

// Encode returns the 16 byte big-endian records of all table entries,
// without the table header.
func (t Table) Encode() []byte {
	buf := make([]byte, 0, len(t)*tableEntrySize)
	for _, entry := range t {
		buf = binary.BigEndian.AppendUint32(buf, entry.Ptr)
		buf = binary.BigEndian.AppendUint32(buf, entry.Size)
		buf = append(buf, entry.Medium, entry.CachePolicy)
		buf = binary.BigEndian.AppendUint16(buf, entry.Data1)
		buf = binary.BigEndian.AppendUint16(buf, entry.Data2)
		buf = binary.BigEndian.AppendUint16(buf, entry.Data3)
	}
	return buf
}

// Resolve returns the entry at the given index, following one level of
// aliasing. The returned index is the index of the entry that holds the data.
// An alias that points to another alias or outside of the table is corrupt input.
func (t Table) Resolve(index int) (TableEntry, int, error) {
	if index < 0 || index >= len(t) {
		return TableEntry{}, 0, fmt.Errorf("table index %d out of range [0,%d): %w",
			index, len(t), segment.ErrCorruptInput)
	}

	entry := t[index]
	if !entry.IsAlias() {
		return entry, index, nil
	}

	target := int(entry.Ptr)
	if target >= len(t) {
		return TableEntry{}, 0, fmt.Errorf("entry %d aliases missing entry %d: %w",
			index, target, segment.ErrCorruptInput)
	}
	if t[target].IsAlias() {
		return TableEntry{}, 0, fmt.Errorf("entry %d aliases entry %d which is an alias itself: %w",
			index, target, segment.ErrCorruptInput)
	}
	return t[target], target, nil
}

// ParseFontIndices reads the sequence to sound font mapping table for count
// sequences. For every sequence a 16 bit cursor at base+i*2 points to a byte
// count followed by that many font ids, relative to base.
func ParseFontIndices(code *segment.Segment, base int64, count int) ([][]uint8, error) {
	indices := make([][]uint8, 0, count)

	for i := range count {
		cursor, err := code.U16(base + int64(i)*2)
		if err != nil {
			return nil, fmt.Errorf("reading font index cursor of sequence %d: %w", i, err)
		}

		pos := base + int64(cursor)
		numFonts, err := code.U8(pos)
		if err != nil {
			return nil, fmt.Errorf("reading font count of sequence %d: %w", i, err)
		}

		fonts, err := code.Bytes(pos+1, int(numFonts))
		if err != nil {
			return nil, fmt.Errorf("reading font ids of sequence %d: %w", i, err)
		}
		indices = append(indices, fonts)
	}

	return indices, nil
}
