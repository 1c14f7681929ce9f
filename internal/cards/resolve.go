package cards

import (
	"strings"

	"github.com/google/uuid"
)

// Built-in text defaults used when neither the card nor the deck sets a value.
var BuiltinTextSettings = TextSettings{
	FontFamily:          "Fredoka",
	DefaultFontSize:     48,
	DefaultColor:        "#FFFFFF",
	DefaultOutlineWidth: 3,
	DefaultOutlineColor: "#333333",
	DefaultHAlign:       AlignCenter,
	DefaultVAlign:       VAlignCenter,
}

// Resolver turns label-based drafts into normalized content.
type Resolver struct {
	// NewID returns a fresh unique id. Defaults to uuid.NewString.
	NewID func() string
}

// NewResolver returns a Resolver that stamps uuid ids.
func NewResolver() *Resolver {
	return &Resolver{NewID: uuid.NewString}
}

// PostProcess assigns ids and asset keys, links cards to backgrounds and
// icons by case-insensitive label, and fills text defaults. It never fails:
// an unmatched background label falls back to the first background and an
// unmatched icon label leaves the card without an icon.
//
// Duplicate labels are not rejected; the last entry with a given label wins
// the lookup.
func (r *Resolver) PostProcess(d Draft) Content {
	newID := r.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	c := Content{
		DeckName:           d.DeckName,
		Rules:              d.Rules,
		Backgrounds:        make([]Background, 0, len(d.Backgrounds)),
		Icons:              make([]Icon, 0, len(d.Icons)),
		TextSettings:       resolveTextSettings(d.TextSettings),
		Cards:              make([]Card, 0, len(d.Cards)),
		ShowText:           normalizeShowText(d.ShowText),
		CharacterPlacement: PlacementBackgrounds,
	}
	if d.IconScale > 0 && d.IconScale <= 1 {
		c.IconScale = d.IconScale
	}

	bgByLabel := make(map[string]string, len(d.Backgrounds))
	for _, b := range d.Backgrounds {
		id := newID()
		c.Backgrounds = append(c.Backgrounds, Background{
			ID:            id,
			Label:         b.Label,
			Color:         b.Color,
			ImagePrompt:   b.ImagePrompt,
			ImageAssetKey: BackgroundKey(id),
		})
		bgByLabel[strings.ToLower(b.Label)] = id
	}

	iconByLabel := make(map[string]string, len(d.Icons))
	for _, ic := range d.Icons {
		id := newID()
		c.Icons = append(c.Icons, Icon{
			ID:            id,
			Label:         ic.Label,
			Color:         ic.Color,
			ImagePrompt:   ic.ImagePrompt,
			ImageAssetKey: IconKey(id),
		})
		iconByLabel[strings.ToLower(ic.Label)] = id
	}

	if d.CardBack != nil {
		c.CardBack = &CardBack{ImagePrompt: d.CardBack.ImagePrompt, ImageAssetKey: CardBackKey}
	}

	for _, dc := range d.Cards {
		card := Card{
			ID:          newID(),
			Title:       dc.Title,
			Count:       min(MaxCardCount, max(1, int(dc.Count))),
			PrimaryText: normalizeText(dc.PrimaryText),
		}
		if id, ok := bgByLabel[strings.ToLower(dc.BackgroundLabel)]; ok {
			card.BackgroundID = id
		} else if len(c.Backgrounds) > 0 {
			card.BackgroundID = c.Backgrounds[0].ID
		}
		if dc.IconLabel != "" {
			card.IconID = iconByLabel[strings.ToLower(dc.IconLabel)]
		}
		if dc.SecondaryText != nil {
			st := normalizeText(*dc.SecondaryText)
			card.SecondaryText = &st
		}
		c.Cards = append(c.Cards, card)
	}
	return c
}

func resolveTextSettings(d DraftTextSettings) TextSettings {
	ts := BuiltinTextSettings
	if d.FontFamily != nil && *d.FontFamily != "" {
		ts.FontFamily = *d.FontFamily
	}
	if d.DefaultFontSize != nil && *d.DefaultFontSize > 0 {
		ts.DefaultFontSize = *d.DefaultFontSize
	}
	if d.DefaultColor != nil && *d.DefaultColor != "" {
		ts.DefaultColor = *d.DefaultColor
	}
	if d.DefaultOutlineWidth != nil && *d.DefaultOutlineWidth > 0 {
		ts.DefaultOutlineWidth = *d.DefaultOutlineWidth
	}
	if d.DefaultOutlineColor != nil && *d.DefaultOutlineColor != "" {
		ts.DefaultOutlineColor = *d.DefaultOutlineColor
	}
	if d.DefaultHAlign != nil {
		if a, ok := ParseHAlign(string(*d.DefaultHAlign)); ok {
			ts.DefaultHAlign = a
		}
	}
	if d.DefaultVAlign != nil {
		if a, ok := ParseVAlign(string(*d.DefaultVAlign)); ok {
			ts.DefaultVAlign = a
		}
	}
	return ts
}

// normalizeText drops alignment overrides that are not one of the known values.
func normalizeText(t CardText) CardText {
	if t.HAlign != nil {
		if a, ok := ParseHAlign(string(*t.HAlign)); ok {
			t.HAlign = &a
		} else {
			t.HAlign = nil
		}
	}
	if t.VAlign != nil {
		if a, ok := ParseVAlign(string(*t.VAlign)); ok {
			t.VAlign = &a
		} else {
			t.VAlign = nil
		}
	}
	return t
}

func normalizeShowText(m ShowTextMode) ShowTextMode {
	switch ShowTextMode(strings.ToLower(string(m))) {
	case ShowNumbersOnly:
		return ShowNumbersOnly
	case ShowNone:
		return ShowNone
	default:
		return ShowAll
	}
}

// ParseHAlign parses a horizontal alignment case-insensitively.
func ParseHAlign(s string) (HAlign, bool) {
	switch a := HAlign(strings.ToLower(strings.TrimSpace(s))); a {
	case AlignLeft, AlignCenter, AlignRight:
		return a, true
	}
	return "", false
}

// ParseVAlign parses a vertical alignment case-insensitively.
func ParseVAlign(s string) (VAlign, bool) {
	switch a := VAlign(strings.ToLower(strings.TrimSpace(s))); a {
	case VAlignTop, VAlignCenter, VAlignBottom:
		return a, true
	}
	return "", false
}
