// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retroextract/internal/options"
)

// ParseFlags parses command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args)
}

func parseArgs(osArgs []string) (options.Program, error) {
	flags := flag.NewFlagSet(osArgs[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(osArgs[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}
	if opts.Profile == "" {
		return opts, &UsageError{flags: flags, msg: "missing profile file parameter -p"}
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the error message, if any, followed by the flag usage.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retroextract [options] <segment directory>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after segment directory, please pass the directory as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.Workers < 1 {
		return fmt.Errorf("invalid worker count %d, must be at least 1", opts.Workers)
	}
	if opts.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", opts.SampleRate)
	}
	if opts.Output == "" {
		opts.Output = options.DefaultOutput
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "directory containing the extracted ROM segments")
	flags.StringVar(&opts.Output, "o", options.DefaultOutput, "output directory for the extracted assets")
	flags.StringVar(&opts.Profile, "p", "", "ROM profile file with table offsets, names and text resources")
	flags.StringVar(&opts.Revision, "r", "", "ROM revision of the profile to use, detected by code CRC32 if not given")
	flags.IntVar(&opts.Workers, "j", options.DefaultWorkers, "number of sound fonts decoded concurrently")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the decoded audio tables by re-encoding them")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.WAV, "wav", false, "convert samples to .wav files instead of raw sample data")
	flags.IntVar(&opts.SampleRate, "rate", options.DefaultSampleRate, "sample rate of written .wav files")
	flags.BoolVar(&opts.NoSequences, "nosequences", false, "do not write sequences")
	flags.BoolVar(&opts.NoMessages, "nomessages", false, "do not scan and write text resources")
}
