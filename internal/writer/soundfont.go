package writer

import (
	"fmt"

	"github.com/retroenv/retroextract/internal/audio"
)

// WriteSoundFonts writes a listing of all sound fonts followed by the
// unique samples they reference.
func (w Writer) WriteSoundFonts(fonts []*audio.SoundFont, samples []*audio.SampleEntry) error {
	if _, err := fmt.Fprintf(w.writer, "; %d sound fonts, %d samples\n\n", len(fonts), len(samples)); err != nil {
		return fmt.Errorf("writing sound font header: %w", err)
	}

	for _, font := range fonts {
		if err := w.writeSoundFont(font); err != nil {
			return fmt.Errorf("writing sound font %d: %w", font.Index, err)
		}
	}
	for _, sample := range samples {
		if err := w.writeSample(sample); err != nil {
			return fmt.Errorf("writing sample %s: %w", SampleName(sample), err)
		}
	}
	return nil
}

func fontLabel(font *audio.SoundFont) string {
	if font.Name != "" {
		return font.Name
	}
	return fmt.Sprintf("soundfont_%d", font.Index)
}

func (w Writer) writeSoundFont(font *audio.SoundFont) error {
	entry := font.Entry
	comment := fmt.Sprintf("ptr $%06X size $%04X medium %d cache %d", entry.Ptr, entry.Size, entry.Medium, entry.CachePolicy)
	if err := w.writeLabel(fontLabel(font), comment); err != nil {
		return err
	}

	if font.AliasOf >= 0 {
		if err := w.writeLine(fmt.Sprintf("alias of sound font %d", font.AliasOf)); err != nil {
			return err
		}
		return w.writeEmptyLine()
	}

	banks := fmt.Sprintf("sample banks %d/%d", font.SampleBankID1, font.SampleBankID2)
	if err := w.writeLine(banks); err != nil {
		return err
	}

	for i, drum := range font.Drums {
		if err := w.writeDrum(i, drum); err != nil {
			return err
		}
	}
	for i, sfx := range font.SoundEffects {
		if err := w.writeLine(fmt.Sprintf("sfx %-3d %s", i, soundDescription(sfx))); err != nil {
			return err
		}
	}
	for i, instrument := range font.Instruments {
		if err := w.writeInstrument(i, instrument); err != nil {
			return err
		}
	}
	return w.writeEmptyLine()
}

func (w Writer) writeDrum(index int, drum *audio.Drum) error {
	if drum == nil {
		return w.writeLine(fmt.Sprintf("drum %-3d -", index))
	}

	line := fmt.Sprintf("drum %-3d release $%02X pan $%02X loaded %d %s envelope %d steps",
		index, drum.ReleaseRate, drum.Pan, drum.Loaded, soundDescription(drum.Sound), len(drum.Envelope))
	return w.writeLine(line)
}

func (w Writer) writeInstrument(index int, instrument audio.Instrument) error {
	if !instrument.IsValid {
		return w.writeLine(fmt.Sprintf("instrument %-3d -", index))
	}

	line := fmt.Sprintf("instrument %-3d range $%02X-$%02X release $%02X envelope %d steps",
		index, instrument.NormalRangeLo, instrument.NormalRangeHi, instrument.ReleaseRate, len(instrument.Envelope))
	if err := w.writeLine(line); err != nil {
		return err
	}

	sounds := []struct {
		name  string
		sound *audio.SoundFontEntry
	}{
		{"low", instrument.LowNotesSound},
		{"normal", instrument.NormalNotesSound},
		{"high", instrument.HighNotesSound},
	}
	for _, s := range sounds {
		if s.sound == nil {
			continue
		}
		if err := w.writeLine(fmt.Sprintf("  %-6s %s", s.name, soundDescription(s.sound))); err != nil {
			return err
		}
	}
	return nil
}

func soundDescription(sound *audio.SoundFontEntry) string {
	if sound == nil {
		return "-"
	}
	return fmt.Sprintf("%s tuning %.6f", SampleName(sound.Sample), sound.Tuning)
}

func (w Writer) writeSample(sample *audio.SampleEntry) error {
	comment := fmt.Sprintf("bank %d offset $%06X", sample.BankID, sample.SourceDataOffset)
	if err := w.writeLabel(SampleName(sample), comment); err != nil {
		return err
	}

	line := fmt.Sprintf("codec %d medium %d flags %d/%d size $%X",
		sample.Codec, sample.Medium, sample.ReservedBit25, sample.ReservedBit21, len(sample.Data))
	if err := w.writeLine(line); err != nil {
		return err
	}

	loop := sample.Loop
	line = fmt.Sprintf("loop start %d end %d count %d", loop.Start, loop.End, loop.Count)
	if err := w.writeLine(line); err != nil {
		return err
	}
	if err := w.BundleValues("  state ", loop.States, nil); err != nil {
		return err
	}

	book := sample.Book
	line = fmt.Sprintf("book order %d predictors %d", book.Order, book.PredictorCount)
	if err := w.writeLine(line); err != nil {
		return err
	}
	if err := w.BundleValues("  coeff ", book.Coefficients, nil); err != nil {
		return err
	}
	return w.writeEmptyLine()
}
