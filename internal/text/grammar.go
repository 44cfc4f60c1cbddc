package text

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/set"
)

// Variant selects the message grammar of a text resource.
type Variant int

const (
	Default Variant = iota
	Primary
	Staff
	Alternate
)

var variantNames = map[Variant]string{
	Default:   "default",
	Primary:   "primary",
	Staff:     "staff",
	Alternate: "alternate",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant returns the variant for the declared category of a text
// resource. An empty category selects the default variant.
func ParseVariant(category string) (Variant, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return Default, nil
	}
	for v, name := range variantNames {
		if name == category {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unsupported text category '%s'", category)
}

// headerLayout describes where the metadata of a message is stored.
type headerLayout int

const (
	// 11 byte payload header with a 16 bit icon field
	headerWideIcon headerLayout = iota
	// 11 byte payload header with an 8 bit icon field
	headerNarrowIcon
	// type and y position packed into one byte of the message table
	headerPacked
)

const payloadHeaderSize = 11

// Grammar describes how the payload bytes of a message are scanned.
type Grammar struct {
	// Terminator ends a message and is part of the message text.
	Terminator byte
	// Extra maps control codes to the number of argument bytes that follow them.
	Extra map[byte]int
	// Completing control codes end the message once their arguments are read.
	Completing set.Set[byte]
	// StopOnNul ends a message at a NUL byte outside of control code
	// arguments, the NUL is not part of the text.
	StopOnNul bool

	header headerLayout
}

func extraBytes(groups ...map[int][]byte) map[byte]int {
	m := make(map[byte]int)
	for _, group := range groups {
		for count, opcodes := range group {
			for _, op := range opcodes {
				m[op] = count
			}
		}
	}
	return m
}

func completing(opcodes ...byte) set.Set[byte] {
	s := set.New[byte]()
	for _, op := range opcodes {
		s.Add(op)
	}
	return s
}

// Grammar returns the scanning rules of the variant.
func (v Variant) Grammar() Grammar {
	switch v {
	case Primary:
		return Grammar{
			Terminator: 0x02,
			Extra: extraBytes(map[int][]byte{
				1: {0x05, 0x13, 0x0E, 0x0C, 0x1E, 0x06, 0x14},
				2: {0x12, 0x11, 0x07},
				3: {0x15},
			}),
			Completing: completing(0x07),
			StopOnNul:  true,
			header:     headerWideIcon,
		}

	case Staff:
		return Grammar{
			Terminator: 0x02,
			Extra: extraBytes(map[int][]byte{
				1: {0x05, 0x06, 0x0E, 0x13, 0x14, 0x1E},
				2: {0x07, 0x0C, 0x11, 0x12},
				3: {0x15},
			}),
			Completing: completing(),
			StopOnNul:  true,
			header:     headerPacked,
		}

	case Alternate:
		return Grammar{
			Terminator: 0x05,
			Extra:      shortCodes(),
			Completing: completing(),
			header:     headerNarrowIcon,
		}

	default:
		return Grammar{
			Terminator: 0xBF,
			Extra:      shortCodes(),
			Completing: completing(),
			header:     headerNarrowIcon,
		}
	}
}

func shortCodes() map[byte]int {
	return extraBytes(map[int][]byte{
		1: {0x14},
		2: {0x1B, 0x1C, 0x1D, 0x1E, 0x1F},
	})
}
