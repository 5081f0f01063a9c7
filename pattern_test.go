package addressscanner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringToPattern(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		length   int
		expected string
	}{
		{
			name:     "basic string",
			input:    "WeChat",
			length:   6,
			expected: "57 65 43 68 61 74",
		},
		{
			name:     "string with padding",
			input:    "WeChat",
			length:   10,
			expected: "57 65 43 68 61 74 ?? ?? ?? ??",
		},
		{
			name:     "string with wildcard",
			input:    "We?Chat",
			length:   7,
			expected: "57 65 ?? 43 68 61 74",
		},
		{
			name:     "empty string",
			input:    "",
			length:   5,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StringToPattern(tt.input, tt.length)
			if result != tt.expected {
				t.Errorf("StringToPattern(%q, %d) = %q, want %q", tt.input, tt.length, result, tt.expected)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	p, err := Compile("81 08 10 00 00 48 ? ? ? ? ? ? 66 44 89 01")
	require.NoError(t, err)

	assert.Equal(t, 16, p.Len())
	assert.Equal(t, byte(0x81), p.Byte(0))
	assert.Equal(t, byte(0x48), p.Byte(5))
	assert.True(t, p.IsWildcard(6))
	assert.True(t, p.IsWildcard(11))
	assert.False(t, p.IsWildcard(12))
	assert.Equal(t, byte(0x01), p.Byte(15))
}

func TestCompile_WildcardForms(t *testing.T) {
	// 四种通配符写法等价
	for _, token := range []string{"*", "**", "?", "??"} {
		t.Run(token, func(t *testing.T) {
			p, err := Compile("90 " + token + " 90")
			require.NoError(t, err)
			assert.True(t, p.IsWildcard(1))
			assert.Equal(t, "90 ? 90", p.String())
		})
	}
}

func TestCompile_CaseInsensitive(t *testing.T) {
	lower, err := Compile("ff ab 0c")
	require.NoError(t, err)
	upper, err := Compile("FF AB 0C")
	require.NoError(t, err)

	assert.True(t, lower.Equal(upper))
	assert.Equal(t, "FF AB 0C", lower.String())
}

func TestCompile_Whitespace(t *testing.T) {
	p, err := Compile("  90\t?\n  90  ")
	require.NoError(t, err)
	assert.Equal(t, "90 ? 90", p.String())
}

func TestCompile_InvalidToken(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		token     string
		position  int
	}{
		{"single hex digit", "9", "9", 0},
		{"non hex", "90 ZZ", "ZZ", 1},
		{"three digits", "90 90 123", "123", 2},
		{"triple wildcard", "??? 90", "???", 0},
		{"prefixed", "0x90", "0x90", 0},
		{"signed", "+F", "+F", 0},
		{"mixed wildcard", "9?", "9?", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.signature)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrInvalidToken))

			var tokenErr *InvalidTokenError
			require.True(t, errors.As(err, &tokenErr))
			assert.Equal(t, tt.token, tokenErr.Token)
			assert.Equal(t, tt.position, tokenErr.Position)
		})
	}
}

func TestCompile_Empty(t *testing.T) {
	for _, signature := range []string{"", "   ", "\t\n"} {
		_, err := Compile(signature)
		assert.ErrorIs(t, err, ErrEmptySignature)
	}
}

func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() { MustCompile("90 90") })
	assert.Panics(t, func() { MustCompile("9") })
}

func TestPattern_RoundTrip(t *testing.T) {
	signatures := []string{
		"90 90 90",
		"f3 48 0f 2a f0 85 ** 7e ** 49 8b ** ** ** 00 00 ** c0 48 85 ** 74",
		"? ?? * **",
		"48 8B 05 ?? ?? ?? ?? 48 8B D9 F3 0F 10 50 ??",
	}

	for _, signature := range signatures {
		first := MustCompile(signature)
		rendered := first.String()

		second := MustCompile(rendered)
		assert.True(t, first.Equal(second), signature)
		assert.Equal(t, rendered, second.String(), signature)
	}
}

func TestPattern_Anchor(t *testing.T) {
	tests := []struct {
		signature string
		anchor    []byte
		position  int
	}{
		{"90 90 90", []byte{0x90, 0x90, 0x90}, 0},
		{"48 ? 8B 05 0F ? 10", []byte{0x8B, 0x05, 0x0F}, 2},
		{"? AA ? BB CC", []byte{0xBB, 0xCC}, 3},
		{"? ? ?", nil, 0},
	}

	for _, tt := range tests {
		anchor, pos := MustCompile(tt.signature).anchor()
		assert.Equal(t, tt.anchor, anchor, tt.signature)
		assert.Equal(t, tt.position, pos, tt.signature)
	}
}

func TestPattern_SkipTable(t *testing.T) {
	p := MustCompile("AA BB CC DD")
	assert.Equal(t, 3, p.skip[0xAA])
	assert.Equal(t, 2, p.skip[0xBB])
	assert.Equal(t, 1, p.skip[0xCC])
	// the last position never contributes a shift
	assert.Equal(t, 4, p.skip[0xDD])
	assert.Equal(t, 4, p.skip[0x00])

	p = MustCompile("AA ? CC DD")
	assert.Equal(t, 2, p.skip[0x00])
	assert.Equal(t, 2, p.skip[0xAA])
	assert.Equal(t, 1, p.skip[0xCC])
}
