// Package export writes decoded assets to an output directory.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retroextract/internal/audio"
	"github.com/retroenv/retroextract/internal/text"
	"github.com/retroenv/retroextract/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

const (
	sequencesDir  = "sequences"
	samplesDir    = "samples"
	messagesDir   = "messages"
	soundFontList = "soundfonts.txt"

	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Options controls which assets are written and how.
type Options struct {
	WAV            bool // convert samples to .wav files
	SampleRate     int
	OffsetComments bool
}

// Exporter writes decoded assets below a base directory.
type Exporter struct {
	logger  *log.Logger
	dir     string
	options Options
}

// New returns a new exporter for the given output directory.
func New(logger *log.Logger, dir string, options Options) *Exporter {
	return &Exporter{
		logger:  logger,
		dir:     dir,
		options: options,
	}
}

// WriteSequences writes the raw data of every sequence to its own file.
func (e *Exporter) WriteSequences(ctx context.Context, sequences []*audio.Sequence) error {
	dir := filepath.Join(e.dir, sequencesDir)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	for _, seq := range sequences {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := fmt.Sprintf("%03d", seq.Index)
		if seq.Name != "" {
			name += "_" + sanitizeName(seq.Name)
		}
		path := filepath.Join(dir, name+".seq")
		if err := os.WriteFile(path, seq.Data, filePermissions); err != nil {
			return fmt.Errorf("writing sequence %d: %w", seq.Index, err)
		}
	}

	e.logger.Debug("Wrote sequences", log.Int("count", len(sequences)))
	return nil
}

// WriteSamples writes every sample to a file in the directory of its sample
// bank, either as raw sample data or converted to a .wav file.
func (e *Exporter) WriteSamples(ctx context.Context, samples []*audio.SampleEntry) error {
	for _, sample := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := filepath.Join(e.dir, samplesDir, fmt.Sprintf("bank%d", sample.BankID))
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}

		name := sanitizeName(writer.SampleName(sample))
		if err := e.writeSample(dir, name, sample); err != nil {
			return fmt.Errorf("writing sample %s: %w", name, err)
		}
	}

	e.logger.Debug("Wrote samples", log.Int("count", len(samples)))
	return nil
}

func (e *Exporter) writeSample(dir, name string, sample *audio.SampleEntry) error {
	if !e.options.WAV {
		return os.WriteFile(filepath.Join(dir, name+".bin"), sample.Data, filePermissions)
	}

	pcm, err := sample.PCM()
	if err != nil {
		return fmt.Errorf("decoding PCM: %w", err)
	}
	return writeWAV(filepath.Join(dir, name+".wav"), e.options.SampleRate, pcm)
}

// WriteSoundFonts writes the sound font and sample listing.
func (e *Exporter) WriteSoundFonts(fonts []*audio.SoundFont, samples []*audio.SampleEntry) error {
	return e.writeListing(soundFontList, func(w *writer.Writer) error {
		return w.WriteSoundFonts(fonts, samples)
	})
}

// WriteMessages writes the message listing of a text resource.
func (e *Exporter) WriteMessages(name string, variant text.Variant, messages []text.MessageRecord) error {
	fileName := filepath.Join(messagesDir, sanitizeName(name)+".txt")
	return e.writeListing(fileName, func(w *writer.Writer) error {
		return w.WriteMessages(name, variant, messages)
	})
}

func (e *Exporter) writeListing(name string, write func(w *writer.Writer) error) (err error) {
	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing file %s: %w", path, closeErr)
		}
	}()

	w := writer.New(file, writer.Options{OffsetComments: e.options.OffsetComments})
	if err := write(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// sanitizeName replaces characters that are not safe in file names.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
