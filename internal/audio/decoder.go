// Package audio decodes the audio tables, sound fonts, samples and sequences
// of a ROM from its code and audio segments.
package audio

import (
	"context"
	"fmt"

	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retroextract/internal/symbols"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// Names contains the symbolic names that are attached to decoded entities.
// Samples are keyed by sample bank index and sample data offset, sound fonts
// and sequences by their table index in bank 0.
type Names struct {
	Samples    *symbols.Names
	SoundFonts *symbols.Names
	Sequences  *symbols.Names
}

// NewNames returns empty name tables.
func NewNames() Names {
	return Names{
		Samples:    symbols.NewNames(),
		SoundFonts: symbols.NewNames(),
		Sequences:  symbols.NewNames(),
	}
}

// Decoder decodes the audio data of a ROM.
type Decoder struct {
	logger  *log.Logger
	names   Names
	workers int
}

// New returns a new audio decoder. A worker count above 1 decodes sound
// fonts concurrently.
func New(logger *log.Logger, names Names, workers int) *Decoder {
	if workers < 1 {
		workers = 1
	}
	empty := NewNames()
	if names.Samples == nil {
		names.Samples = empty.Samples
	}
	if names.SoundFonts == nil {
		names.SoundFonts = empty.SoundFonts
	}
	if names.Sequences == nil {
		names.Sequences = empty.Sequences
	}
	return &Decoder{
		logger:  logger,
		names:   names,
		workers: workers,
	}
}

// Decode decodes all audio tables located at the given code segment offsets.
// It needs the code, audio bank, audio data and sequence segments.
func (d *Decoder) Decode(ctx context.Context, segments segment.Set, offsets Offsets) (*Bank, error) {
	code, err := segments.Get(segment.Code)
	if err != nil {
		return nil, err
	}
	audioBank, err := segments.Get(segment.AudioBank)
	if err != nil {
		return nil, err
	}
	audioData, err := segments.Get(segment.AudioData)
	if err != nil {
		return nil, err
	}
	audioSeq, err := segments.Get(segment.AudioSeq)
	if err != nil {
		return nil, err
	}

	bank, err := d.parseTables(code, offsets)
	if err != nil {
		return nil, err
	}

	j := &job{
		bank:        audioBank,
		data:        audioData,
		sampleBanks: bank.SampleBankTable,
		names:       d.names.Samples,
		cache:       newSampleCache(),
	}

	bank.SoundFonts, err = d.decodeSoundFonts(ctx, j, bank.SoundFontTable)
	if err != nil {
		return nil, err
	}
	bank.Samples = j.cache.samples()
	bank.SampleDecodes = j.cache.decodeCount()

	bank.Sequences, err = d.decodeSequences(ctx, audioSeq, bank)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Decoded audio bank",
		log.Int("sound_fonts", len(bank.SoundFonts)),
		log.Int("samples", len(bank.Samples)),
		log.Int("sequences", len(bank.Sequences)))
	return bank, nil
}

func (d *Decoder) parseTables(code *segment.Segment, offsets Offsets) (*Bank, error) {
	var bank Bank
	var err error

	if bank.SoundFontTable, err = ParseTable(code, offsets.SoundFontTable); err != nil {
		return nil, fmt.Errorf("parsing sound font table at 0x%X: %w", offsets.SoundFontTable, err)
	}
	if bank.SequenceTable, err = ParseTable(code, offsets.SequenceTable); err != nil {
		return nil, fmt.Errorf("parsing sequence table at 0x%X: %w", offsets.SequenceTable, err)
	}
	if bank.SampleBankTable, err = ParseTable(code, offsets.SampleBankTable); err != nil {
		return nil, fmt.Errorf("parsing sample bank table at 0x%X: %w", offsets.SampleBankTable, err)
	}

	bank.FontIndices, err = ParseFontIndices(code, offsets.SequenceFontTable, len(bank.SequenceTable))
	if err != nil {
		return nil, fmt.Errorf("parsing sequence font table at 0x%X: %w", offsets.SequenceFontTable, err)
	}

	d.logger.Debug("Parsed audio tables",
		log.Int("sound_fonts", len(bank.SoundFontTable)),
		log.Int("sequences", len(bank.SequenceTable)),
		log.Int("sample_banks", len(bank.SampleBankTable)))
	return &bank, nil
}

func (d *Decoder) decodeSoundFonts(ctx context.Context, j *job, table Table) ([]*SoundFont, error) {
	fonts := make([]*SoundFont, len(table))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, entry := range table {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			font, err := d.decodeSoundFont(j, i, entry)
			if err != nil {
				return fmt.Errorf("decoding sound font %d: %w", i, err)
			}
			fonts[i] = font
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fonts, nil
}

func (d *Decoder) decodeSoundFont(j *job, index int, entry TableEntry) (*SoundFont, error) {
	var font *SoundFont

	if entry.IsAlias() {
		font = &SoundFont{
			Index:   index,
			Entry:   entry,
			AliasOf: int(entry.Ptr),
		}
	} else {
		var err error
		font, err = j.parseSoundFont(index, entry)
		if err != nil {
			return nil, err
		}
	}

	font.Name = d.names.SoundFonts.Name(0, uint32(index))
	d.logger.Debug("Decoded sound font",
		log.Int("index", index),
		log.String("name", font.Name),
		log.Int("drums", len(font.Drums)),
		log.Int("sound_effects", len(font.SoundEffects)),
		log.Int("instruments", len(font.Instruments)))
	return font, nil
}

func (d *Decoder) decodeSequences(ctx context.Context, audioSeq *segment.Segment, bank *Bank) ([]*Sequence, error) {
	sequences := make([]*Sequence, 0, len(bank.SequenceTable))

	for i := range bank.SequenceTable {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sequence, err := ParseSequence(audioSeq, bank.SequenceTable, i)
		if err != nil {
			return nil, fmt.Errorf("decoding sequence %d: %w", i, err)
		}
		sequence.Name = d.names.Sequences.Name(0, uint32(i))
		sequence.FontIDs = bank.FontIndices[i]
		sequences = append(sequences, sequence)
	}
	return sequences, nil
}
