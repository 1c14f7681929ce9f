package cards

import (
	"regexp"
	"strings"
)

// ResolvedText is a card text with every property settled.
type ResolvedText struct {
	Content      string
	FontFamily   string
	FontSize     float64
	Color        string
	OutlineWidth float64
	OutlineColor string
	HAlign       HAlign
	VAlign       VAlign
}

// ResolveText merges a text's overrides over the deck settings, and the deck
// settings over builtin. Precedence: card override, then deck, then builtin.
// A deck field counts as unset when it holds its zero value.
func ResolveText(t CardText, deck, builtin TextSettings) ResolvedText {
	ts := MergeSettings(deck, builtin)
	r := ResolvedText{
		Content:      t.Content,
		FontFamily:   ts.FontFamily,
		FontSize:     ts.DefaultFontSize,
		Color:        ts.DefaultColor,
		OutlineWidth: ts.DefaultOutlineWidth,
		OutlineColor: ts.DefaultOutlineColor,
		HAlign:       ts.DefaultHAlign,
		VAlign:       ts.DefaultVAlign,
	}
	if t.FontSize != nil && *t.FontSize > 0 {
		r.FontSize = *t.FontSize
	}
	if t.Color != nil && *t.Color != "" {
		r.Color = *t.Color
	}
	if t.OutlineWidth != nil && *t.OutlineWidth >= 0 {
		r.OutlineWidth = *t.OutlineWidth
	}
	if t.OutlineColor != nil && *t.OutlineColor != "" {
		r.OutlineColor = *t.OutlineColor
	}
	if t.HAlign != nil {
		if a, ok := ParseHAlign(string(*t.HAlign)); ok {
			r.HAlign = a
		}
	}
	if t.VAlign != nil {
		if a, ok := ParseVAlign(string(*t.VAlign)); ok {
			r.VAlign = a
		}
	}
	return r
}

// MergeSettings fills every unset field of deck from builtin.
func MergeSettings(deck, builtin TextSettings) TextSettings {
	out := deck
	if out.FontFamily == "" {
		out.FontFamily = builtin.FontFamily
	}
	if out.DefaultFontSize <= 0 {
		out.DefaultFontSize = builtin.DefaultFontSize
	}
	if out.DefaultColor == "" {
		out.DefaultColor = builtin.DefaultColor
	}
	if out.DefaultOutlineWidth <= 0 {
		out.DefaultOutlineWidth = builtin.DefaultOutlineWidth
	}
	if out.DefaultOutlineColor == "" {
		out.DefaultOutlineColor = builtin.DefaultOutlineColor
	}
	if _, ok := ParseHAlign(string(out.DefaultHAlign)); !ok {
		out.DefaultHAlign = builtin.DefaultHAlign
	}
	if _, ok := ParseVAlign(string(out.DefaultVAlign)); !ok {
		out.DefaultVAlign = builtin.DefaultVAlign
	}
	return out
}

// PrimaryText resolves a card's primary text against the deck settings.
func PrimaryText(card Card, deck TextSettings) ResolvedText {
	return ResolveText(card.PrimaryText, deck, BuiltinTextSettings)
}

// SecondaryText resolves a card's secondary text. Its defaults are derived
// from the deck: half the font size, outline one unit thinner (at least 1),
// and the alignment the primary text resolved to.
func SecondaryText(card Card, deck TextSettings) (ResolvedText, bool) {
	if card.SecondaryText == nil {
		return ResolvedText{}, false
	}
	primary := PrimaryText(card, deck)
	ts := MergeSettings(deck, BuiltinTextSettings)
	secondaryDefaults := TextSettings{
		FontFamily:          ts.FontFamily,
		DefaultFontSize:     ts.DefaultFontSize / 2,
		DefaultColor:        ts.DefaultColor,
		DefaultOutlineWidth: max(1, ts.DefaultOutlineWidth-1),
		DefaultOutlineColor: ts.DefaultOutlineColor,
		DefaultHAlign:       primary.HAlign,
		DefaultVAlign:       primary.VAlign,
	}
	return ResolveText(*card.SecondaryText, secondaryDefaults, BuiltinTextSettings), true
}

var numericText = regexp.MustCompile(`^\d+$`)

// ShouldShowText reports whether text is printed under mode. Unknown modes
// behave like ShowAll.
func ShouldShowText(text string, mode ShowTextMode) bool {
	switch mode {
	case ShowNone:
		return false
	case ShowNumbersOnly:
		return numericText.MatchString(strings.TrimSpace(text))
	default:
		return true
	}
}
