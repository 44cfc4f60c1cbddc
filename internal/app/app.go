// Package app provides the main application helpers for the extractor.
package app

import (
	"fmt"
	"strings"

	"github.com/retroenv/retroextract/internal/config"
	"github.com/retroenv/retroextract/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("retroextract", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// PrintInfo prints the information about the input segments and the
// detected ROM revision.
func PrintInfo(logger *log.Logger, opts options.Program, rev config.Revision, segments int) {
	if opts.Quiet {
		return
	}

	logger.Info("Processing ROM segments",
		log.String("directory", opts.Input),
		log.String("revision", rev.Name),
		log.Int("segments", segments),
	)
	logger.Debug("Audio table offsets",
		log.Hex("sound_fonts", rev.SoundFontTable),
		log.Hex("sequences", rev.SequenceTable),
		log.Hex("sample_banks", rev.SampleBankTable),
		log.Hex("sequence_fonts", rev.SequenceFontTable),
	)
}
