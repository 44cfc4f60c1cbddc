package export

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavChannels  = 1
	wavFormatPCM = 1
)

// writeWAV writes mono 16 bit PCM samples to a .wav file.
func writeWAV(path string, sampleRate int, samples []int16) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing file %s: %w", path, closeErr)
		}
	}()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: wavChannels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	enc := wav.NewEncoder(file, sampleRate, wavBitDepth, wavChannels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing wav file: %w", err)
	}
	return nil
}
