package audio

import (
	"fmt"

	"github.com/retroenv/retroextract/internal/segment"
)

const envelopeStepSize = 4

// ParseEnvelope reads envelope steps starting at offset until and including
// the first step with a negative delay. The length is only bounded by the
// segment, a missing end marker results in a corrupt input error at the end
// of the segment.
func ParseEnvelope(bank *segment.Segment, offset int64) ([]EnvelopeStep, error) {
	var steps []EnvelopeStep

	for {
		delay, err := bank.I16(offset)
		if err != nil {
			return nil, fmt.Errorf("reading envelope step %d: %w", len(steps), err)
		}
		arg, err := bank.I16(offset + 2)
		if err != nil {
			return nil, fmt.Errorf("reading envelope step %d: %w", len(steps), err)
		}
		offset += envelopeStepSize

		steps = append(steps, EnvelopeStep{
			Delay: delay,
			Arg:   arg,
		})
		if delay < 0 {
			return steps, nil
		}
	}
}
