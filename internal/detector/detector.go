// Package detector handles ROM revision detection.
package detector

import (
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/retroenv/retroextract/internal/config"
	"github.com/retroenv/retroextract/internal/segment"
	"github.com/retroenv/retrogolib/log"
)

// ErrUnknownRevision is returned when no profile revision matches the ROM.
var ErrUnknownRevision = errors.New("unknown ROM revision")

// Detector selects the profile revision that matches the loaded code segment.
type Detector struct {
	logger *log.Logger
}

// New creates a new revision detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the ROM revision from options or the code segment.
// An explicitly requested revision is used without checking the checksum,
// a profile with a single revision is used directly, otherwise the CRC32
// of the code segment has to match the checksum of a revision.
func (d *Detector) Detect(profile *config.Profile, requested string, code *segment.Segment) (config.Revision, error) {
	if requested != "" {
		for _, rev := range profile.Revisions {
			if strings.EqualFold(rev.Name, requested) {
				return rev, nil
			}
		}
		return config.Revision{}, fmt.Errorf("revision '%s' not found in profile, known revisions: %s: %w",
			requested, strings.Join(profile.RevisionNames(), ", "), ErrUnknownRevision)
	}

	if len(profile.Revisions) == 1 {
		return profile.Revisions[0], nil
	}

	checksum := crc32.ChecksumIEEE(code.Data)
	for _, rev := range profile.Revisions {
		if rev.HasCRC32 && rev.CRC32 == checksum {
			d.logger.Debug("Auto-detected revision",
				log.String("revision", rev.Name),
				log.Hex("crc32", checksum))
			return rev, nil
		}
	}

	return config.Revision{}, fmt.Errorf("code segment checksum 0x%08X does not match any revision, known revisions: %s: %w",
		checksum, strings.Join(profile.RevisionNames(), ", "), ErrUnknownRevision)
}
