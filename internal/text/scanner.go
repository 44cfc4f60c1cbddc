// Package text scans the message tables of a ROM and extracts the raw
// message bytes with their metadata.
package text

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retrogolib/log"
)

const (
	lastMessageID = 0xFFFC
	endMessageID  = 0xFFFF

	recordStride       = 8
	sharedLangStride   = 4
	typePosOffset      = 2
	offsetWordOffset   = 4
	messageOffsetMask  = 0x00FFFFFF
	messageSegmentBits = 24
)

// Options locates a message table inside the code segment.
type Options struct {
	CodeOffset int64
	// LangOffset is an optional separate language table. When set and
	// distinct from CodeOffset, its cursor advances 4 bytes per record.
	LangOffset int64
}

// Scanner extracts messages from a message table in the code segment and
// the message payloads of a message data segment.
type Scanner struct {
	logger *log.Logger
	code   *segment.Segment
	data   *segment.Segment
}

// NewScanner returns a new message scanner.
func NewScanner(logger *log.Logger, code, data *segment.Segment) *Scanner {
	return &Scanner{
		logger: logger,
		code:   code,
		data:   data,
	}
}

// Scan decodes all records of the message table up to and including the
// record with an end marker id.
func (s *Scanner) Scan(ctx context.Context, variant Variant, opts Options) ([]MessageRecord, error) {
	g := variant.Grammar()

	recordPtr := opts.CodeOffset
	langPtr := opts.CodeOffset
	langStride := int64(recordStride)
	if opts.LangOffset != 0 {
		langPtr = opts.LangOffset
		if langPtr != recordPtr {
			langStride = sharedLangStride
		}
	}

	var messages []MessageRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msg, err := s.scanRecord(g, recordPtr, langPtr)
		if err != nil {
			return nil, fmt.Errorf("scanning message record %d at 0x%X: %w", len(messages), recordPtr, err)
		}
		messages = append(messages, msg)
		if msg.IsLast() {
			break
		}

		recordPtr += recordStride
		langPtr += langStride
	}

	s.logger.Debug("Scanned message table",
		log.String("variant", variant.String()),
		log.Hex("code_offset", uint64(opts.CodeOffset)),
		log.Int("messages", len(messages)))
	return messages, nil
}

func (s *Scanner) scanRecord(g Grammar, recordPtr, langPtr int64) (MessageRecord, error) {
	var msg MessageRecord
	var err error

	if msg.ID, err = s.code.U16(recordPtr); err != nil {
		return msg, err
	}
	word, err := s.code.U32(langPtr + offsetWordOffset)
	if err != nil {
		return msg, fmt.Errorf("reading offset of message 0x%04X: %w", msg.ID, err)
	}
	msg.SegmentID = uint8(word >> messageSegmentBits)
	msg.Offset = word & messageOffsetMask

	payload := int64(msg.Offset)
	if g.header == headerPacked {
		typePos, err := s.code.U8(recordPtr + typePosOffset)
		if err != nil {
			return msg, err
		}
		msg.TextboxType = typePos >> 4
		msg.TextboxYPos = typePos & 0x0F
	} else {
		if err := s.readHeader(g, &msg, payload); err != nil {
			return msg, fmt.Errorf("reading header of message 0x%04X: %w", msg.ID, err)
		}
		payload += payloadHeaderSize
	}

	if msg.Text, err = s.scanText(g, payload); err != nil {
		return msg, fmt.Errorf("scanning text of message 0x%04X: %w", msg.ID, err)
	}
	return msg, nil
}

func (s *Scanner) readHeader(g Grammar, msg *MessageRecord, offset int64) error {
	header, err := s.data.Bytes(offset, payloadHeaderSize)
	if err != nil {
		return err
	}

	msg.TextboxType = header[0]
	msg.TextboxYPos = header[1]

	fields := header[3:]
	if g.header == headerWideIcon {
		msg.Icon = binary.BigEndian.Uint16(header[2:])
		fields = header[4:]
	} else {
		msg.Icon = uint16(header[2])
	}
	msg.NextMessageID = binary.BigEndian.Uint16(fields[0:])
	msg.FirstItemCost = binary.BigEndian.Uint16(fields[2:])
	msg.SecondItemCost = binary.BigEndian.Uint16(fields[4:])
	return nil
}

// scanText appends payload bytes until the grammar ends the message. Control
// code arguments are always read completely, even for a control code that
// completes the message.
func (s *Scanner) scanText(g Grammar, offset int64) ([]byte, error) {
	var text []byte
	extra := 0
	completed := false

	for {
		c, err := s.data.U8(offset)
		if err != nil {
			return nil, err
		}
		if extra == 0 && g.StopOnNul && c == 0 {
			return text, nil
		}
		text = append(text, c)
		offset++

		if extra > 0 {
			extra--
			if extra == 0 && completed {
				return text, nil
			}
			continue
		}

		if c == g.Terminator {
			return text, nil
		}
		extra = g.Extra[c]
		if g.Completing.Contains(c) {
			completed = true
		}
		if completed && extra == 0 {
			return text, nil
		}
	}
}
