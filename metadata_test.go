package fontbake

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newTestFont() *BitmapFont {
	return &BitmapFont{
		Scale:   24,
		Width:   128,
		Height:  128,
		Padding: 4,
		Ascent:  21.5,
		Descent: -5.5,
		LineGap: 1.25,
		Glyphs: map[rune]BitmapGlyph{
			' ': {AdvanceWidth: 6},
			'A': {
				BitmapSource:    &SourceRect{X: 0, Y: 0, Width: 24, Height: 26},
				AdvanceWidth:    14.5,
				LeftSideBearing: 0.25,
				Ascent:          17,
			},
			'V': {
				BitmapSource:    &SourceRect{X: 24, Y: 0, Width: 24, Height: 26},
				AdvanceWidth:    13.75,
				LeftSideBearing: 0.5,
				Ascent:          17,
			},
		},
		Kerning: map[KernPair]float64{
			{Left: 'A', Right: 'V'}: -1.25,
			{Left: 'V', Right: 'A'}: -1,
		},
	}
}

func TestKernPair_TextRoundTrip(t *testing.T) {
	pair := KernPair{Left: 'A', Right: 'V'}

	text, err := pair.MarshalText()
	if err != nil {
		t.Fatalf("Should not return an error on marshaling. Got %v", err)
	}
	if string(text) != "65,86" {
		t.Errorf("Pair expected to encode as \"65,86\". Got %q", text)
	}

	var decoded KernPair
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("Should not return an error on unmarshaling. Got %v", err)
	}
	if decoded != pair {
		t.Errorf("Pair expected to round-trip unchanged. Got %v", decoded)
	}
}

func TestKernPair_MalformedText(t *testing.T) {
	for _, text := range []string{"65", "a,b", "65;86", ""} {
		var pair KernPair
		if err := pair.UnmarshalText([]byte(text)); err == nil {
			t.Errorf("Key %q expected to fail to unmarshal", text)
		}
	}
}

func TestBitmapFont_DeterministicJSON(t *testing.T) {
	font := newTestFont()

	var first, second bytes.Buffer
	if err := font.WriteJSON(&first); err != nil {
		t.Fatalf("Should not return an error on encoding. Got %v", err)
	}
	if err := font.WriteJSON(&second); err != nil {
		t.Fatalf("Should not return an error on encoding. Got %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("Repeated encodes expected to produce byte-identical output")
	}
}

func TestBitmapFont_JSONRoundTrip(t *testing.T) {
	font := newTestFont()

	var buf bytes.Buffer
	if err := font.WriteJSON(&buf); err != nil {
		t.Fatalf("Should not return an error on encoding. Got %v", err)
	}

	var decoded BitmapFont
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Should not return an error on decoding. Got %v", err)
	}

	if len(decoded.Glyphs) != len(font.Glyphs) {
		t.Errorf("Decoded font expected to hold %v glyphs. Got %v", len(font.Glyphs), len(decoded.Glyphs))
	}
	if decoded.Glyphs[' '].BitmapSource != nil {
		t.Errorf("Whitespace glyph expected to decode without a source rectangle")
	}
	if k := decoded.Kerning[KernPair{Left: 'A', Right: 'V'}]; k != -1.25 {
		t.Errorf("Kerning pair expected to decode to -1.25. Got %v", k)
	}
}

func TestBitmapFont_OmitsEmptyKerning(t *testing.T) {
	font := newTestFont()
	font.Kerning = nil

	var buf bytes.Buffer
	if err := font.WriteJSON(&buf); err != nil {
		t.Fatalf("Should not return an error on encoding. Got %v", err)
	}
	if strings.Contains(buf.String(), "kerning_table") {
		t.Errorf("Disabled kerning table expected to be omitted from the output")
	}
}

func TestBitmapFont_Validate(t *testing.T) {
	font := newTestFont()
	if err := font.validate(); err != nil {
		t.Errorf("Consistent metadata should not return an error. Got %v", err)
	}

	font.Kerning[KernPair{Left: 'A', Right: 'W'}] = -0.5
	if err := font.validate(); err == nil {
		t.Errorf("Kerning pair over an unmapped codepoint expected to fail the validation")
	}
}
