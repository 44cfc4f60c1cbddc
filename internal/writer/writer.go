// Package writer implements the text listings of decoded sound fonts and messages.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retroextract/internal/audio"
	"github.com/retroenv/retroextract/internal/text"
)

const valuesPerLine = 8

type lineWriterFunc func(line string, valueCount int) error

// Writer writes listings of decoded entities.
type Writer struct {
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	OffsetComments bool // output source offsets in comments
}

// New creates a new writer.
func New(writer io.Writer, options Options) *Writer {
	return &Writer{
		options: options,
		writer:  writer,
	}
}

// BundleValues bundles writes of values to print valuesPerLine values per line.
func (w Writer) BundleValues(prefix string, values []int16, lineWriter lineWriterFunc) error {
	remaining := len(values)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, valuesPerLine)

		buf := &strings.Builder{}
		buf.WriteString(prefix)
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "%6d, ", values[i+j]); err != nil {
				return fmt.Errorf("writing value: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ", ")

		if lineWriter != nil {
			if err := lineWriter(line, toWrite); err != nil {
				return fmt.Errorf("writing value line using custom writer: %w", err)
			}
		} else {
			if _, err := fmt.Fprintf(w.writer, "%s\n", line); err != nil {
				return fmt.Errorf("writing value line: %w", err)
			}
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

func (w Writer) writeLabel(label, comment string) error {
	if comment == "" || !w.options.OffsetComments {
		if _, err := fmt.Fprintf(w.writer, "%s:\n", label); err != nil {
			return fmt.Errorf("writing label: %w", err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w.writer, "%-32s ; %s\n", label+":", comment); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (w Writer) writeLine(line string) error {
	if _, err := fmt.Fprintf(w.writer, "  %s\n", line); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

func (w Writer) writeEmptyLine() error {
	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// SampleName returns the symbolic name of a sample or a name derived from
// its data offset.
func SampleName(sample *audio.SampleEntry) string {
	if sample.Name != "" {
		return sample.Name
	}
	return fmt.Sprintf("sample_%06X", sample.SourceDataOffset)
}

// EscapeText returns the message bytes with all control codes and bytes
// outside printable ASCII escaped as \xNN.
func EscapeText(data []byte) string {
	buf := &strings.Builder{}
	for _, b := range data {
		switch {
		case b == '\\' || b == '"':
			buf.WriteByte('\\')
			buf.WriteByte(b)
		case b >= 0x20 && b < 0x7F:
			buf.WriteByte(b)
		default:
			fmt.Fprintf(buf, "\\x%02X", b)
		}
	}
	return buf.String()
}

// WriteMessages writes a listing of all messages of a text resource.
func (w Writer) WriteMessages(name string, variant text.Variant, messages []text.MessageRecord) error {
	if _, err := fmt.Fprintf(w.writer, "; message table %s (%s), %d messages\n\n", name, variant, len(messages)); err != nil {
		return fmt.Errorf("writing message header: %w", err)
	}

	for _, msg := range messages {
		comment := fmt.Sprintf("segment $%02X offset $%06X", msg.SegmentID, msg.Offset)
		if err := w.writeLabel(fmt.Sprintf("message_%04X", msg.ID), comment); err != nil {
			return err
		}

		header := fmt.Sprintf("type %d ypos %d icon $%02X next $%04X cost %d/%d",
			msg.TextboxType, msg.TextboxYPos, msg.Icon, msg.NextMessageID, msg.FirstItemCost, msg.SecondItemCost)
		if err := w.writeLine(header); err != nil {
			return err
		}
		if err := w.writeLine(`"`+EscapeText(msg.Text)+`"`); err != nil {
			return err
		}
		if err := w.writeEmptyLine(); err != nil {
			return err
		}
	}
	return nil
}
