package cards

import (
	"errors"
	"fmt"
)

// MaxCardCount caps the copies of a single card design.
const MaxCardCount = 1000

// ErrInvalidContent wraps every Validate failure.
var ErrInvalidContent = errors.New("invalid card game content")

// ShowTextMode controls which card texts are printed.
type ShowTextMode string

const (
	ShowAll         ShowTextMode = "all"
	ShowNumbersOnly ShowTextMode = "numbers_only"
	ShowNone        ShowTextMode = "none"
)

// HAlign is the horizontal alignment of a card text.
type HAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"
)

// VAlign is the vertical placement of a card text.
type VAlign string

const (
	VAlignTop    VAlign = "top"
	VAlignCenter VAlign = "center"
	VAlignBottom VAlign = "bottom"
)

// Asset key prefixes. Keys are the only link between content and stored assets.
const (
	BackgroundKeyPrefix = "card_bg:"
	IconKeyPrefix       = "card_icon:"
	CardBackKey         = "card_back"
)

// PlacementBackgrounds is the only character placement the card game supports.
const PlacementBackgrounds = "backgrounds"

// DefaultIconScale is the icon size relative to the card width.
const DefaultIconScale = 0.4

// BackgroundKey returns the asset key for a background id.
func BackgroundKey(id string) string { return BackgroundKeyPrefix + id }

// IconKey returns the asset key for an icon id.
func IconKey(id string) string { return IconKeyPrefix + id }

// Content is the normalized card game document.
type Content struct {
	DeckName           string       `json:"deckName"`
	Rules              string       `json:"rules"`
	Backgrounds        []Background `json:"backgrounds"`
	Icons              []Icon       `json:"icons"`
	CardBack           *CardBack    `json:"cardBack,omitempty"`
	TextSettings       TextSettings `json:"textSettings"`
	Cards              []Card       `json:"cards"`
	ShowText           ShowTextMode `json:"showText"`
	CharacterPlacement string       `json:"characterPlacement"`
	IconScale          float64      `json:"iconScale,omitempty"`
}

// Background is a full-bleed card background.
type Background struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	Color         string `json:"color"`
	ImagePrompt   string `json:"imagePrompt"`
	ImageAssetKey string `json:"imageAssetKey"`
}

// Icon is a transparent illustration centred on a card.
type Icon struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	Color         string `json:"color,omitempty"`
	ImagePrompt   string `json:"imagePrompt"`
	ImageAssetKey string `json:"imageAssetKey"`
}

// CardBack is the single image printed on the reverse of every card.
type CardBack struct {
	ImagePrompt   string `json:"imagePrompt"`
	ImageAssetKey string `json:"imageAssetKey"`
}

// TextSettings holds the deck-wide text defaults.
type TextSettings struct {
	FontFamily          string  `json:"fontFamily"`
	DefaultFontSize     float64 `json:"defaultFontSize"`
	DefaultColor        string  `json:"defaultColor"`
	DefaultOutlineWidth float64 `json:"defaultOutlineWidth"`
	DefaultOutlineColor string  `json:"defaultOutlineColor"`
	DefaultHAlign       HAlign  `json:"defaultHAlign"`
	DefaultVAlign       VAlign  `json:"defaultVAlign"`
}

// Card is one card design; Count physical copies are printed.
type Card struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Count         int       `json:"count"`
	BackgroundID  string    `json:"backgroundId"`
	IconID        string    `json:"iconId,omitempty"`
	PrimaryText   CardText  `json:"primaryText"`
	SecondaryText *CardText `json:"secondaryText,omitempty"`
}

// CardText is a text with optional per-card overrides. Nil fields inherit.
type CardText struct {
	Content      string   `json:"content"`
	FontSize     *float64 `json:"fontSize,omitempty"`
	Color        *string  `json:"color,omitempty"`
	OutlineWidth *float64 `json:"outlineWidth,omitempty"`
	OutlineColor *string  `json:"outlineColor,omitempty"`
	HAlign       *HAlign  `json:"hAlign,omitempty"`
	VAlign       *VAlign  `json:"vAlign,omitempty"`
}

// Background returns the background with the given id. When id is unknown
// the first background is returned; ok is false only for a deck without
// backgrounds.
func (c *Content) Background(id string) (Background, bool) {
	for _, b := range c.Backgrounds {
		if b.ID == id {
			return b, true
		}
	}
	if len(c.Backgrounds) > 0 {
		return c.Backgrounds[0], true
	}
	return Background{}, false
}

// Icon returns the icon with the given id.
func (c *Content) Icon(id string) (Icon, bool) {
	if id == "" {
		return Icon{}, false
	}
	for _, ic := range c.Icons {
		if ic.ID == id {
			return ic, true
		}
	}
	return Icon{}, false
}

// Card returns the card with the given id.
func (c *Content) Card(id string) (Card, bool) {
	for _, card := range c.Cards {
		if card.ID == id {
			return card, true
		}
	}
	return Card{}, false
}

// IconScaleOrDefault returns the configured icon scale or DefaultIconScale.
func (c *Content) IconScaleOrDefault() float64 {
	if c.IconScale > 0 {
		return c.IconScale
	}
	return DefaultIconScale
}

// AssetKeys lists every asset key the content references, in document order.
func (c *Content) AssetKeys() []string {
	keys := make([]string, 0, len(c.Backgrounds)+len(c.Icons)+1)
	for _, b := range c.Backgrounds {
		keys = append(keys, b.ImageAssetKey)
	}
	for _, ic := range c.Icons {
		keys = append(keys, ic.ImageAssetKey)
	}
	if c.CardBack != nil {
		keys = append(keys, c.CardBack.ImageAssetKey)
	}
	return keys
}

// Validate checks the invariants the compositor relies on.
func (c *Content) Validate() error {
	seen := make(map[string]bool)
	for _, key := range c.AssetKeys() {
		if key == "" {
			return fmt.Errorf("%w: empty asset key", ErrInvalidContent)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate asset key %q", ErrInvalidContent, key)
		}
		seen[key] = true
	}
	ids := make(map[string]bool, len(c.Cards))
	for _, card := range c.Cards {
		if ids[card.ID] {
			return fmt.Errorf("%w: duplicate card id %q", ErrInvalidContent, card.ID)
		}
		ids[card.ID] = true
		if card.Count < 1 || card.Count > MaxCardCount {
			return fmt.Errorf("%w: card %q: count must be between 1 and %d", ErrInvalidContent, card.ID, MaxCardCount)
		}
	}
	return nil
}
