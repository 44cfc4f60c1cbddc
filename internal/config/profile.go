package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/retroenv/retroextract/internal/text"
	"gopkg.in/ini.v1"
)

const (
	revisionPrefix = "revision."
	samplesPrefix  = "samples."
	textPrefix     = "text."

	sequencesSection  = "sequences"
	soundFontsSection = "soundfonts"
)

// Profile describes a ROM: the table offsets of all known revisions, the
// symbolic names of its audio entities and its text resources.
type Profile struct {
	Revisions  []Revision
	Sequences  map[uint32]string
	SoundFonts map[uint32]string
	// Samples maps a sample bank index to names keyed by sample data offset.
	Samples map[int]map[uint32]string
	Texts   []TextResource
}

// Revision contains the audio table offsets inside the code segment of one
// ROM revision.
type Revision struct {
	Name              string
	CRC32             uint32
	HasCRC32          bool
	SoundFontTable    int64
	SequenceTable     int64
	SampleBankTable   int64
	SequenceFontTable int64
}

// TextResource locates a message table and its message data segment.
type TextResource struct {
	Name       string
	Segment    string
	Variant    text.Variant
	CodeOffset int64
	LangOffset int64
}

// LoadProfile reads a profile from a file name or from raw ini data.
func LoadProfile(source any) (*Profile, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveSections: true,
		InsensitiveKeys:     true,
	}, source)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	p := &Profile{
		Sequences:  map[uint32]string{},
		SoundFonts: map[uint32]string{},
		Samples:    map[int]map[uint32]string{},
	}

	for _, sec := range file.Sections() {
		name := sec.Name()
		var err error

		switch {
		case name == ini.DefaultSection:
			continue

		case strings.HasPrefix(name, revisionPrefix):
			rev, err := parseRevision(strings.TrimPrefix(name, revisionPrefix), sec)
			if err != nil {
				return nil, fmt.Errorf("parsing section '%s': %w", name, err)
			}
			p.Revisions = append(p.Revisions, rev)

		case strings.HasPrefix(name, samplesPrefix):
			bank, err := strconv.Atoi(strings.TrimPrefix(name, samplesPrefix))
			if err != nil {
				return nil, fmt.Errorf("invalid sample bank in section '%s': %w", name, err)
			}
			if p.Samples[bank], err = parseNames(sec); err != nil {
				return nil, fmt.Errorf("parsing section '%s': %w", name, err)
			}

		case strings.HasPrefix(name, textPrefix):
			res, err := parseTextResource(strings.TrimPrefix(name, textPrefix), sec)
			if err != nil {
				return nil, fmt.Errorf("parsing section '%s': %w", name, err)
			}
			p.Texts = append(p.Texts, res)

		case name == sequencesSection:
			if p.Sequences, err = parseNames(sec); err != nil {
				return nil, fmt.Errorf("parsing section '%s': %w", name, err)
			}

		case name == soundFontsSection:
			if p.SoundFonts, err = parseNames(sec); err != nil {
				return nil, fmt.Errorf("parsing section '%s': %w", name, err)
			}

		default:
			return nil, fmt.Errorf("unsupported profile section '%s'", name)
		}
	}

	if len(p.Revisions) == 0 {
		return nil, errors.New("profile does not contain any revision")
	}
	return p, nil
}

// RevisionNames returns the sorted names of all revisions.
func (p *Profile) RevisionNames() []string {
	names := make([]string, 0, len(p.Revisions))
	for _, rev := range p.Revisions {
		names = append(names, rev.Name)
	}
	slices.Sort(names)
	return names
}

func parseRevision(name string, sec *ini.Section) (Revision, error) {
	rev := Revision{Name: name}

	fields := []struct {
		key   string
		value *int64
	}{
		{"sound_font_table", &rev.SoundFontTable},
		{"sequence_table", &rev.SequenceTable},
		{"sample_bank_table", &rev.SampleBankTable},
		{"sequence_font_table", &rev.SequenceFontTable},
	}
	for _, field := range fields {
		if !sec.HasKey(field.key) {
			return rev, fmt.Errorf("missing key '%s'", field.key)
		}
		v, err := parseNumber(sec.Key(field.key).String())
		if err != nil {
			return rev, fmt.Errorf("invalid value of key '%s': %w", field.key, err)
		}
		*field.value = int64(v)
	}

	if sec.HasKey("crc32") {
		crc, err := parseNumber(sec.Key("crc32").String())
		if err != nil || crc > 0xFFFFFFFF {
			return rev, fmt.Errorf("invalid crc32 value '%s'", sec.Key("crc32").String())
		}
		rev.CRC32 = uint32(crc)
		rev.HasCRC32 = true
	}
	return rev, nil
}

func parseTextResource(name string, sec *ini.Section) (TextResource, error) {
	res := TextResource{
		Name:    name,
		Segment: sec.Key("segment").MustString(name),
	}

	var err error
	if res.Variant, err = text.ParseVariant(sec.Key("category").String()); err != nil {
		return res, err
	}

	if !sec.HasKey("code_offset") {
		return res, errors.New("missing key 'code_offset'")
	}
	codeOffset, err := parseNumber(sec.Key("code_offset").String())
	if err != nil {
		return res, fmt.Errorf("invalid value of key 'code_offset': %w", err)
	}
	res.CodeOffset = int64(codeOffset)

	if sec.HasKey("lang_offset") {
		langOffset, err := parseNumber(sec.Key("lang_offset").String())
		if err != nil {
			return res, fmt.Errorf("invalid value of key 'lang_offset': %w", err)
		}
		res.LangOffset = int64(langOffset)
	}
	return res, nil
}

// parseNames reads a section of offset or index keys mapped to names.
func parseNames(sec *ini.Section) (map[uint32]string, error) {
	names := make(map[uint32]string, len(sec.Keys()))
	for _, key := range sec.Keys() {
		v, err := parseNumber(key.Name())
		if err != nil || v > 0xFFFFFFFF {
			return nil, fmt.Errorf("invalid name key '%s'", key.Name())
		}
		names[uint32(v)] = strings.TrimSpace(key.Value())
	}
	return names, nil
}

// parseNumber parses a decimal or 0x prefixed hexadecimal number.
func parseNumber(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing number '%s': %w", s, err)
	}
	return v, nil
}
