package audio

import (
	"github.com/retroenv/retroextract/internal/vadpcm"
)

// PCM decodes the sample data to signed 16 bit PCM samples.
func (s *SampleEntry) PCM() ([]int16, error) {
	var book *vadpcm.Codebook
	if s.Codec == vadpcm.CodecADPCM || s.Codec == vadpcm.CodecSmallADPCM {
		var err error
		book, err = vadpcm.NewCodebook(int(s.Book.Order), int(s.Book.PredictorCount), s.Book.Coefficients)
		if err != nil {
			return nil, err
		}
	}
	return vadpcm.Decode(s.Codec, s.Data, book)
}
