package text

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseVariant(t *testing.T) {
	tests := []struct {
		category string
		expected Variant
	}{
		{"", Default},
		{"default", Default},
		{"Primary", Primary},
		{" staff ", Staff},
		{"alternate", Alternate},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			v, err := ParseVariant(tt.category)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, v)
			assert.Equal(t, tt.expected, mustParse(t, v.String()))
		})
	}

	_, err := ParseVariant("credits")
	assert.ErrorContains(t, err, "credits")
}

func mustParse(t *testing.T, category string) Variant {
	t.Helper()
	v, err := ParseVariant(category)
	assert.NoError(t, err)
	return v
}

func TestGrammarExtraBytes(t *testing.T) {
	primary := Primary.Grammar()
	assert.Equal(t, 2, primary.Extra[0x07])
	assert.True(t, primary.Completing.Contains(0x07))
	assert.Equal(t, 3, primary.Extra[0x15])
	assert.Equal(t, 0, primary.Extra[0x41])

	staff := Staff.Grammar()
	assert.Equal(t, 2, staff.Extra[0x07])
	assert.False(t, staff.Completing.Contains(0x07))
	assert.Equal(t, 2, staff.Extra[0x0C])
	assert.Equal(t, 1, staff.Extra[0x06])

	alternate := Alternate.Grammar()
	assert.Equal(t, byte(0x05), alternate.Terminator)
	assert.Equal(t, 1, alternate.Extra[0x14])
	assert.Equal(t, 2, alternate.Extra[0x1F])
	assert.False(t, alternate.StopOnNul)

	def := Default.Grammar()
	assert.Equal(t, byte(0xBF), def.Terminator)
	assert.Equal(t, len(alternate.Extra), len(def.Extra))
	assert.Equal(t, 2, def.Extra[0x1B])
}
