// Package pipeline orchestrates the extraction workflow stages.
package pipeline

import (
	"context"
	"fmt"

	"github.com/retroenv/retroextract/internal/app"
	"github.com/retroenv/retroextract/internal/audio"
	"github.com/retroenv/retroextract/internal/config"
	"github.com/retroenv/retroextract/internal/detector"
	"github.com/retroenv/retroextract/internal/export"
	"github.com/retroenv/retroextract/internal/loader"
	"github.com/retroenv/retroextract/internal/options"
	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retroextract/internal/symbols"
	"github.com/retroenv/retroextract/internal/text"
	"github.com/retroenv/retroextract/internal/verification"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates the complete extraction workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// Result contains everything decoded from a ROM.
type Result struct {
	Revision config.Revision
	Bank     *audio.Bank
	Texts    []TextResult
}

// TextResult contains the messages of one text resource.
type TextResult struct {
	Resource config.TextResource
	Messages []text.MessageRecord
}

// New creates a new extraction pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete extraction pipeline.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) (*Result, error) {
	profile, err := config.LoadProfile(opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", opts.Profile, err)
	}

	segments, err := p.loader.Load(opts.Input, segmentNames(profile, opts))
	if err != nil {
		return nil, fmt.Errorf("loading segments: %w", err)
	}

	return p.ExecuteWithSegments(ctx, segments, profile, opts)
}

// ExecuteWithSegments runs the extraction pipeline with pre-loaded segments.
// This is useful for testing and programmatic usage where the segments are already in memory.
func (p *Pipeline) ExecuteWithSegments(ctx context.Context, segments segment.Set, profile *config.Profile,
	opts options.Program) (*Result, error) {

	code, err := segments.Get(segment.Code)
	if err != nil {
		return nil, err
	}

	rev, err := p.detector.Detect(profile, opts.Revision, code)
	if err != nil {
		return nil, fmt.Errorf("detecting revision: %w", err)
	}
	app.PrintInfo(p.logger, opts, rev, len(segments))

	names := profileNames(profile)
	p.logger.Debug("Loaded profile names",
		log.Int("samples", names.Samples.Len()),
		log.Int("sound_fonts", names.SoundFonts.Len()),
		log.Int("sequences", names.Sequences.Len()))
	offsets := audio.Offsets{
		SoundFontTable:    rev.SoundFontTable,
		SequenceTable:     rev.SequenceTable,
		SampleBankTable:   rev.SampleBankTable,
		SequenceFontTable: rev.SequenceFontTable,
	}

	bank, err := audio.New(p.logger, names, opts.Workers).Decode(ctx, segments, offsets)
	if err != nil {
		return nil, fmt.Errorf("decoding audio: %w", err)
	}
	p.logger.Info("Decoded audio",
		log.Int("sound_fonts", len(bank.SoundFonts)),
		log.Int("samples", len(bank.Samples)),
		log.Int("sequences", len(bank.Sequences)))
	p.reportUnusedNames(names)

	if opts.Verify {
		if err := verification.VerifyTables(p.logger, code, bank, offsets); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	result := &Result{
		Revision: rev,
		Bank:     bank,
	}

	if !opts.NoMessages {
		result.Texts, err = p.scanTexts(ctx, segments, code, profile.Texts, opts.Workers)
		if err != nil {
			return nil, err
		}
	}

	if err := p.export(ctx, opts, result); err != nil {
		return nil, fmt.Errorf("exporting assets: %w", err)
	}
	return result, nil
}

// scanTexts scans all text resources, independent resources are scanned concurrently.
func (p *Pipeline) scanTexts(ctx context.Context, segments segment.Set, code *segment.Segment,
	resources []config.TextResource, workers int) ([]TextResult, error) {

	results := make([]TextResult, len(resources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, res := range resources {
		g.Go(func() error {
			data, err := segments.Get(res.Segment)
			if err != nil {
				return fmt.Errorf("text resource '%s': %w", res.Name, err)
			}

			scanner := text.NewScanner(p.logger, code, data)
			messages, err := scanner.Scan(ctx, res.Variant, text.Options{
				CodeOffset: res.CodeOffset,
				LangOffset: res.LangOffset,
			})
			if err != nil {
				return fmt.Errorf("scanning text resource '%s': %w", res.Name, err)
			}

			results[i] = TextResult{
				Resource: res,
				Messages: messages,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		p.logger.Info("Scanned messages",
			log.String("resource", res.Resource.Name),
			log.Int("messages", len(res.Messages)))
	}
	return results, nil
}

func (p *Pipeline) export(ctx context.Context, opts options.Program, result *Result) error {
	if opts.Output == "" {
		return nil
	}

	exp := export.New(p.logger, opts.Output, export.Options{
		WAV:            opts.WAV,
		SampleRate:     opts.SampleRate,
		OffsetComments: true,
	})

	if !opts.NoSequences {
		if err := exp.WriteSequences(ctx, result.Bank.Sequences); err != nil {
			return err
		}
	}
	if err := exp.WriteSamples(ctx, result.Bank.Samples); err != nil {
		return err
	}
	if err := exp.WriteSoundFonts(result.Bank.SoundFonts, result.Bank.Samples); err != nil {
		return err
	}
	for _, res := range result.Texts {
		if err := exp.WriteMessages(res.Resource.Name, res.Resource.Variant, res.Messages); err != nil {
			return err
		}
	}

	p.logger.Info("Wrote assets", log.String("directory", opts.Output))
	return nil
}

func (p *Pipeline) reportUnusedNames(names audio.Names) {
	for _, index := range names.Samples.BankIndexes() {
		for _, offset := range names.Samples.Bank(index).Unused() {
			p.logger.Debug("Unused sample name",
				log.Int("bank", index),
				log.Hex("offset", offset))
		}
	}
}

// segmentNames returns the names of all segments that the options require.
func segmentNames(profile *config.Profile, opts options.Program) []string {
	names := []string{segment.Code, segment.AudioBank, segment.AudioData, segment.AudioSeq}
	if opts.NoMessages {
		return names
	}
	for _, res := range profile.Texts {
		names = append(names, res.Segment)
	}
	return names
}

// profileNames converts the profile names to the name tables of the audio decoder.
func profileNames(profile *config.Profile) audio.Names {
	names := audio.NewNames()
	fill := func(table *symbols.Names, bank int, m map[uint32]string) {
		for key, name := range m {
			table.Set(bank, key, name)
		}
	}

	fill(names.Sequences, 0, profile.Sequences)
	fill(names.SoundFonts, 0, profile.SoundFonts)
	for bank, m := range profile.Samples {
		fill(names.Samples, bank, m)
	}
	return names
}
