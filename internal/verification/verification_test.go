package verification

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/retroenv/retroextract/internal/audio"
	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func buildCode(tables ...audio.Table) ([]byte, audio.Offsets) {
	var data []byte
	var bases []int64
	for _, table := range tables {
		bases = append(bases, int64(len(data)))
		header := make([]byte, tableHeaderSize)
		binary.BigEndian.PutUint16(header, uint16(len(table)))
		data = append(data, header...)
		data = append(data, table.Encode()...)
	}
	return data, audio.Offsets{
		SoundFontTable:  bases[0],
		SequenceTable:   bases[1],
		SampleBankTable: bases[2],
	}
}

func TestVerifyTables(t *testing.T) {
	logger := log.NewTestLogger(t)

	fonts := audio.Table{{Ptr: 0x10, Size: 0x240, Medium: 2, CachePolicy: 2, Data1: 0x0102, Data2: 0x0304, Data3: 5}}
	sequences := audio.Table{{Ptr: 0, Size: 4}, {Ptr: 0, Size: 0}}
	banks := audio.Table{{Ptr: 0x100, Size: 0x200, Medium: 2}}
	data, offsets := buildCode(fonts, sequences, banks)
	code := segment.New(segment.Code, data)

	t.Run("decoded tables match", func(t *testing.T) {
		bank := &audio.Bank{}
		var err error
		bank.SoundFontTable, err = audio.ParseTable(code, offsets.SoundFontTable)
		assert.NoError(t, err)
		bank.SequenceTable, err = audio.ParseTable(code, offsets.SequenceTable)
		assert.NoError(t, err)
		bank.SampleBankTable, err = audio.ParseTable(code, offsets.SampleBankTable)
		assert.NoError(t, err)

		assert.NoError(t, VerifyTables(logger, code, bank, offsets))
	})

	t.Run("changed entry", func(t *testing.T) {
		changed := append(audio.Table{}, sequences...)
		changed[0].Size = 5
		bank := &audio.Bank{SoundFontTable: fonts, SequenceTable: changed, SampleBankTable: banks}

		err := VerifyTables(logger, code, bank, offsets)
		assert.True(t, errors.Is(err, ErrMismatch))
		assert.ErrorContains(t, err, "sequence table")
		assert.ErrorContains(t, err, "1 offset mismatches")
	})

	t.Run("changed entry count", func(t *testing.T) {
		bank := &audio.Bank{SoundFontTable: fonts, SequenceTable: sequences[:1], SampleBankTable: banks}

		err := VerifyTables(logger, code, bank, offsets)
		assert.True(t, errors.Is(err, ErrMismatch))
		assert.ErrorContains(t, err, "entry count")
	})
}

func TestCheckBufferEqual(t *testing.T) {
	logger := log.NewTestLogger(t)

	assert.NoError(t, checkBufferEqual(logger, 0, []byte{1, 2}, []byte{1, 2}))

	err := checkBufferEqual(logger, 0, []byte{1, 2}, []byte{1})
	assert.ErrorContains(t, err, "mismatched lengths")
}
