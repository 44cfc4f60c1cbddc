// Package config handles the logger setup and the ROM profile files that
// describe table offsets, symbolic names and text resources.
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates the application logger. Debug logging takes
// precedence over quiet mode, which only reports errors.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
