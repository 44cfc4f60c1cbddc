// Package verification verifies that the decoded audio tables recreate the input.
package verification

import (
	"errors"
	"fmt"

	"github.com/retroenv/retroextract/internal/audio"
	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retrogolib/log"
)

// ErrMismatch is returned when a re-encoded table differs from the input.
var ErrMismatch = errors.New("table mismatch")

const tableHeaderSize = 16

// VerifyTables re-encodes the decoded audio tables of a bank and compares
// them byte for byte with the tables in the code segment.
func VerifyTables(logger *log.Logger, code *segment.Segment, bank *audio.Bank, offsets audio.Offsets) error {
	tables := []struct {
		name   string
		offset int64
		table  audio.Table
	}{
		{"sound font", offsets.SoundFontTable, bank.SoundFontTable},
		{"sequence", offsets.SequenceTable, bank.SequenceTable},
		{"sample bank", offsets.SampleBankTable, bank.SampleBankTable},
	}

	for _, t := range tables {
		if err := verifyTable(logger, code, t.offset, t.table); err != nil {
			return fmt.Errorf("verifying %s table at 0x%X: %w", t.name, t.offset, err)
		}
		logger.Debug("Verified table",
			log.String("table", t.name),
			log.Int("entries", len(t.table)))
	}
	return nil
}

func verifyTable(logger *log.Logger, code *segment.Segment, offset int64, table audio.Table) error {
	count, err := code.U16(offset)
	if err != nil {
		return err
	}
	if int(count) != len(table) {
		return fmt.Errorf("entry count %d does not match decoded count %d: %w", count, len(table), ErrMismatch)
	}

	encoded := table.Encode()
	input, err := code.Bytes(offset+tableHeaderSize, len(encoded))
	if err != nil {
		return err
	}
	return checkBufferEqual(logger, offset+tableHeaderSize, input, encoded)
}

func checkBufferEqual(logger *log.Logger, base int64, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d: %w", len(input), len(output), ErrMismatch)
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Offset mismatch",
				log.Hex("offset", base+int64(i)),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches: %w", diffs, ErrMismatch)
}
