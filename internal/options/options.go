// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	Directory string `arg:"positional" usage:"directory containing the extracted ROM segments"`
}

// Parameters contains file path options.
type Parameters struct {
	Input    string `flag:"i" usage:"directory containing the extracted ROM segments"`
	Output   string `flag:"o" usage:"output directory for the extracted assets" default:"assets"`
	Profile  string `flag:"p" usage:"ROM profile file with table offsets, names and text resources"`
	Revision string `flag:"r" usage:"ROM revision of the profile to use (default: detect by code CRC32)"`
}

// Flags contains behavior options.
type Flags struct {
	Workers int  `flag:"j" usage:"number of sound fonts decoded concurrently" default:"1"`
	Verify  bool `flag:"verify" usage:"verify the decoded audio tables by re-encoding them"`
	Debug   bool `flag:"debug" usage:"enable debug logging"`
	Quiet   bool `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains output options.
type OutputFlags struct {
	WAV         bool `flag:"wav" usage:"convert samples to .wav files instead of raw sample data"`
	SampleRate  int  `flag:"rate" usage:"sample rate of written .wav files" default:"16000"`
	NoSequences bool `flag:"nosequences" usage:"do not write sequences"`
	NoMessages  bool `flag:"nomessages" usage:"do not scan and write text resources"`
}

// Program options of the extractor.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Default values of options that are not zero.
const (
	DefaultOutput     = "assets"
	DefaultWorkers    = 1
	DefaultSampleRate = 16000
)
