package audio

import (
	"fmt"

	"github.com/retroenv/retroextract/internal/segment"
)

// ParseSequence returns the sequence data of the sequence table entry at the
// given index. Alias entries are resolved one level deep.
func ParseSequence(seq *segment.Segment, table Table, index int) (*Sequence, error) {
	entry, target, err := table.Resolve(index)
	if err != nil {
		return nil, err
	}

	sequence := &Sequence{
		Index:   index,
		AliasOf: -1,
	}
	if target != index {
		sequence.AliasOf = target
	}

	sequence.Data, err = seq.Bytes(int64(entry.Ptr), int(entry.Size))
	if err != nil {
		return nil, fmt.Errorf("reading sequence data of entry %d: %w", target, err)
	}
	return sequence, nil
}
