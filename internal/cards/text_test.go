package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestShouldShowText(t *testing.T) {
	tests := []struct {
		text string
		mode ShowTextMode
		want bool
	}{
		{"7", ShowNumbersOnly, true},
		{" 12 ", ShowNumbersOnly, true},
		{"SKIP", ShowNumbersOnly, false},
		{"7a", ShowNumbersOnly, false},
		{"", ShowNumbersOnly, false},
		{"SKIP", ShowAll, true},
		{"", ShowAll, true},
		{"anything", ShowNone, false},
		{"7", ShowNone, false},
		{"x", ShowTextMode("bogus"), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldShowText(tt.text, tt.mode), "%q/%s", tt.text, tt.mode)
	}
}

func TestResolveTextPrecedence(t *testing.T) {
	deck := TextSettings{FontFamily: "Nunito", DefaultFontSize: 40, DefaultColor: "#111111"}

	r := ResolveText(CardText{Content: "hi"}, deck, BuiltinTextSettings)
	assert.Equal(t, "Nunito", r.FontFamily)
	assert.Equal(t, 40.0, r.FontSize)
	assert.Equal(t, "#111111", r.Color)
	assert.Equal(t, 3.0, r.OutlineWidth)
	assert.Equal(t, "#333333", r.OutlineColor)
	assert.Equal(t, AlignCenter, r.HAlign)
	assert.Equal(t, VAlignCenter, r.VAlign)

	r = ResolveText(CardText{
		Content:      "hi",
		FontSize:     ptr(12.0),
		Color:        ptr("#abcdef"),
		OutlineWidth: ptr(0.0),
		HAlign:       ptr(AlignRight),
		VAlign:       ptr(VAlignBottom),
	}, deck, BuiltinTextSettings)
	assert.Equal(t, 12.0, r.FontSize)
	assert.Equal(t, "#abcdef", r.Color)
	assert.Equal(t, 0.0, r.OutlineWidth)
	assert.Equal(t, AlignRight, r.HAlign)
	assert.Equal(t, VAlignBottom, r.VAlign)
}

func TestSecondaryTextDefaults(t *testing.T) {
	card := Card{
		PrimaryText:   CardText{Content: "5", HAlign: ptr(AlignLeft), VAlign: ptr(VAlignTop)},
		SecondaryText: &CardText{Content: "five"},
	}
	deck := TextSettings{DefaultFontSize: 50, DefaultOutlineWidth: 4}

	s, ok := SecondaryText(card, deck)
	assert.True(t, ok)
	assert.Equal(t, 25.0, s.FontSize)
	assert.Equal(t, 3.0, s.OutlineWidth)
	assert.Equal(t, AlignLeft, s.HAlign)
	assert.Equal(t, VAlignTop, s.VAlign)
	assert.Equal(t, "five", s.Content)

	// Thin outlines never drop below 1.
	s, _ = SecondaryText(card, TextSettings{DefaultOutlineWidth: 1})
	assert.Equal(t, 1.0, s.OutlineWidth)

	card.SecondaryText.FontSize = ptr(9.0)
	s, _ = SecondaryText(card, deck)
	assert.Equal(t, 9.0, s.FontSize)

	_, ok = SecondaryText(Card{}, deck)
	assert.False(t, ok)
}
