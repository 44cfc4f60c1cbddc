package audio

import (
	"fmt"

	"github.com/retroenv/retroextract/internal/segment"
)

const (
	soundFontEntrySize = 8
	drumPointerSize    = 4
	instrumentsOffset  = 8

	// notes above this range have no high notes sound
	maxNoteRange = 0x7F
)

// job holds the state of one audio bank decode pass.
type job struct {
	bank        *segment.Segment
	data        *segment.Segment
	sampleBanks Table
	names       nameLookup
	cache       *sampleCache
}

type nameLookup interface {
	Name(bank int, key uint32) string
}

// fontLayout contains the values packed into the data fields of a sound font table entry.
type fontLayout struct {
	sampleBankID1  int
	sampleBankID2  int
	numInstruments int
	numDrums       int
	numSfx         int
}

func unpackFontLayout(entry TableEntry) fontLayout {
	return fontLayout{
		sampleBankID1:  int(entry.Data1 >> 8),
		sampleBankID2:  int(entry.Data1 & 0xFF),
		numInstruments: int(entry.Data2 >> 8),
		numDrums:       int(entry.Data2 & 0xFF),
		numSfx:         int(entry.Data3),
	}
}

// parseSoundFont decodes the drums, sound effects and instruments of a sound
// font table entry. All pointers inside the font are relative to its start.
func (j *job) parseSoundFont(index int, entry TableEntry) (*SoundFont, error) {
	layout := unpackFontLayout(entry)
	font := &SoundFont{
		Index:         index,
		Entry:         entry,
		AliasOf:       -1,
		SampleBankID1: layout.sampleBankID1,
		SampleBankID2: layout.sampleBankID2,
	}

	bankEntry, _, err := j.sampleBanks.Resolve(layout.sampleBankID1)
	if err != nil {
		return nil, fmt.Errorf("resolving sample bank %d: %w", layout.sampleBankID1, err)
	}

	ref := sampleRef{
		bankIndex: layout.sampleBankID1,
		bankEntry: bankEntry,
		base:      int64(entry.Ptr),
	}

	if font.Drums, err = j.parseDrums(ref, layout.numDrums); err != nil {
		return nil, err
	}
	if font.SoundEffects, err = j.parseSoundEffects(ref, layout.numSfx); err != nil {
		return nil, err
	}
	if font.Instruments, err = j.parseInstruments(ref, layout.numInstruments); err != nil {
		return nil, err
	}
	return font, nil
}

func (j *job) parseDrums(ref sampleRef, count int) ([]*Drum, error) {
	drums := make([]*Drum, 0, count)
	if count == 0 {
		return drums, nil
	}

	tablePtr, err := j.bank.I32(ref.base)
	if err != nil {
		return nil, fmt.Errorf("reading drum table pointer: %w", err)
	}

	offset := ref.base + int64(tablePtr)
	for i := range count {
		drum, err := j.parseDrum(ref, offset)
		if err != nil {
			return nil, fmt.Errorf("decoding drum %d: %w", i, err)
		}
		drums = append(drums, drum)
		offset += drumPointerSize
	}
	return drums, nil
}

func (j *job) parseDrum(ref sampleRef, pointerOffset int64) (*Drum, error) {
	ptr, err := j.bank.I32(pointerOffset)
	if err != nil {
		return nil, err
	}
	if ptr == 0 {
		return nil, nil
	}

	offset := ref.base + int64(ptr)
	record, err := j.bank.Bytes(offset, 4)
	if err != nil {
		return nil, err
	}

	drum := &Drum{
		ReleaseRate: record[0],
		Pan:         record[1],
		Loaded:      record[2],
	}

	if drum.Sound, err = j.parseSoundFontEntry(ref, offset+4); err != nil {
		return nil, fmt.Errorf("decoding sound: %w", err)
	}
	if drum.Tuning, err = j.bank.F32(offset + 8); err != nil {
		return nil, err
	}

	envelopePtr, err := j.bank.I32(offset + 12)
	if err != nil {
		return nil, err
	}
	if drum.Envelope, err = ParseEnvelope(j.bank, ref.base+int64(envelopePtr)); err != nil {
		return nil, err
	}
	return drum, nil
}

func (j *job) parseSoundEffects(ref sampleRef, count int) ([]*SoundFontEntry, error) {
	effects := make([]*SoundFontEntry, 0, count)
	if count == 0 {
		return effects, nil
	}

	tablePtr, err := j.bank.I32(ref.base + 4)
	if err != nil {
		return nil, fmt.Errorf("reading sound effect table pointer: %w", err)
	}

	offset := ref.base + int64(tablePtr)
	for i := range count {
		sfx, err := j.parseSoundFontEntry(ref, offset)
		if err != nil {
			return nil, fmt.Errorf("decoding sound effect %d: %w", i, err)
		}
		effects = append(effects, sfx)
		offset += soundFontEntrySize
	}
	return effects, nil
}

func (j *job) parseInstruments(ref sampleRef, count int) ([]Instrument, error) {
	instruments := make([]Instrument, 0, count)

	for i := range count {
		ptr, err := j.bank.I32(ref.base + instrumentsOffset + int64(i)*4)
		if err != nil {
			return nil, fmt.Errorf("reading pointer of instrument %d: %w", i, err)
		}

		var instrument Instrument
		if ptr != 0 {
			instrument, err = j.parseInstrument(ref, ref.base+int64(ptr))
			if err != nil {
				return nil, fmt.Errorf("decoding instrument %d: %w", i, err)
			}
		}
		instruments = append(instruments, instrument)
	}
	return instruments, nil
}

func (j *job) parseInstrument(ref sampleRef, offset int64) (Instrument, error) {
	record, err := j.bank.Bytes(offset, 4)
	if err != nil {
		return Instrument{}, err
	}

	instrument := Instrument{
		IsValid:       true,
		Loaded:        record[0],
		NormalRangeLo: record[1],
		NormalRangeHi: record[2],
		ReleaseRate:   record[3],
	}

	envelopePtr, err := j.bank.I32(offset + 4)
	if err != nil {
		return Instrument{}, err
	}
	if instrument.Envelope, err = ParseEnvelope(j.bank, ref.base+int64(envelopePtr)); err != nil {
		return Instrument{}, err
	}

	if instrument.LowNotesSound, err = j.parseSoundFontEntry(ref, offset+8); err != nil {
		return Instrument{}, fmt.Errorf("decoding low notes sound: %w", err)
	}
	if instrument.NormalNotesSound, err = j.parseSoundFontEntry(ref, offset+16); err != nil {
		return Instrument{}, fmt.Errorf("decoding normal notes sound: %w", err)
	}
	if instrument.NormalRangeHi != maxNoteRange {
		if instrument.HighNotesSound, err = j.parseSoundFontEntry(ref, offset+24); err != nil {
			return Instrument{}, fmt.Errorf("decoding high notes sound: %w", err)
		}
	}
	return instrument, nil
}

// parseSoundFontEntry decodes a sample pointer and tuning pair. A null sample
// pointer returns nil without error.
func (j *job) parseSoundFontEntry(ref sampleRef, offset int64) (*SoundFontEntry, error) {
	samplePtr, err := j.bank.I32(offset)
	if err != nil {
		return nil, err
	}
	if samplePtr == 0 {
		return nil, nil
	}

	sample, err := j.parseSample(ref, ref.base+int64(samplePtr))
	if err != nil {
		return nil, err
	}
	tuning, err := j.bank.F32(offset + 4)
	if err != nil {
		return nil, err
	}

	return &SoundFontEntry{
		Sample: sample,
		Tuning: tuning,
	}, nil
}
