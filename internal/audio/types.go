package audio

// TableEntry is one 16 byte record of an audio table.
// A Size of 0 marks an alias entry whose Ptr is the index of the real entry.
type TableEntry struct {
	Ptr         uint32
	Size        uint32
	Medium      uint8
	CachePolicy uint8
	Data1       uint16
	Data2       uint16
	Data3       uint16
}

// IsAlias returns whether the entry redirects to another entry of the same table.
func (e TableEntry) IsAlias() bool {
	return e.Size == 0
}

// LoopInfo contains the loop points of a sample and the predictor state at
// the loop start. States holds exactly 16 values if Count is not 0 and is
// empty otherwise.
type LoopInfo struct {
	Start  int32
	End    int32
	Count  int32
	States []int16
}

// PredictorBook is the ADPCM codebook of a sample, containing
// PredictorCount*Order*8 coefficients.
type PredictorBook struct {
	Order          int32
	PredictorCount int32
	Coefficients   []int16
}

// SampleEntry is a decoded sample. Entries are identified by the absolute
// offset of their data in the audio data segment, all references that resolve
// to the same offset share the same instance.
type SampleEntry struct {
	BankID           int
	Data             []byte
	Codec            uint8
	Medium           uint8
	ReservedBit25    uint8
	ReservedBit21    uint8
	Loop             LoopInfo
	Book             PredictorBook
	SourceDataOffset uint32
	Name             string
}

// EnvelopeStep is one step of an ADSR envelope. A negative delay ends the envelope.
type EnvelopeStep struct {
	Delay int16
	Arg   int16
}

// SoundFontEntry references a sample with its tuning.
type SoundFontEntry struct {
	Sample *SampleEntry
	Tuning float32
}

// Drum is a percussion entry of a sound font.
type Drum struct {
	ReleaseRate uint8
	Pan         uint8
	Loaded      uint8
	Tuning      float32
	Sound       *SoundFontEntry // nil if the record has no sample pointer
	Envelope    []EnvelopeStep
}

// Instrument is a melodic instrument of a sound font. Instruments with a
// null offset in the table are kept as placeholders with IsValid set to false.
type Instrument struct {
	IsValid       bool
	Loaded        uint8
	NormalRangeLo uint8
	NormalRangeHi uint8
	ReleaseRate   uint8
	Envelope      []EnvelopeStep

	LowNotesSound    *SoundFontEntry
	NormalNotesSound *SoundFontEntry
	HighNotesSound   *SoundFontEntry
}

// SoundFont is a decoded entry of the sound font table. Drums, SoundEffects
// and Instruments keep the source order and length, a nil drum or sound
// effect marks a null pointer in the source.
type SoundFont struct {
	Index int
	Name  string
	Entry TableEntry

	// AliasOf is the index of the entry this one redirects to, or -1.
	AliasOf int

	SampleBankID1 int
	SampleBankID2 int

	Drums        []*Drum
	SoundEffects []*SoundFontEntry
	Instruments  []Instrument
}

// Sequence is the sequence data of one sequence table entry.
type Sequence struct {
	Index int
	Name  string

	// AliasOf is the index of the entry whose data is used, or -1.
	AliasOf int

	Data    []byte
	FontIDs []uint8
}

// Offsets are the code segment offsets of the audio tables for one ROM revision.
type Offsets struct {
	SoundFontTable    int64
	SequenceTable     int64
	SampleBankTable   int64
	SequenceFontTable int64
}

// Bank is the result of decoding all audio tables of a ROM.
type Bank struct {
	SoundFontTable  Table
	SequenceTable   Table
	SampleBankTable Table

	FontIndices [][]uint8
	SoundFonts  []*SoundFont
	Sequences   []*Sequence

	// Samples contains every unique sample, ordered by data offset.
	Samples []*SampleEntry
	// SampleDecodes is the number of samples that were actually decoded.
	SampleDecodes int
}
