package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Draft is the label-based card game produced by the content model, before
// ids are assigned.
type Draft struct {
	DeckName     string
	Rules        string
	Backgrounds  []DraftBackground
	Icons        []DraftIcon
	CardBack     *DraftCardBack
	TextSettings DraftTextSettings
	Cards        []DraftCard
	ShowText     ShowTextMode
	IconScale    float64
}

// DraftBackground is a background referenced by label.
type DraftBackground struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	ImagePrompt string `json:"imagePrompt"`
}

// DraftIcon is an icon referenced by label.
type DraftIcon struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	ImagePrompt string `json:"imagePrompt"`
}

// DraftCardBack describes the card back illustration.
type DraftCardBack struct {
	ImagePrompt string `json:"imagePrompt"`
}

// DraftTextSettings holds optional deck text defaults.
type DraftTextSettings struct {
	FontFamily          *string  `json:"fontFamily"`
	DefaultFontSize     *float64 `json:"defaultFontSize"`
	DefaultColor        *string  `json:"defaultColor"`
	DefaultOutlineWidth *float64 `json:"defaultOutlineWidth"`
	DefaultOutlineColor *string  `json:"defaultOutlineColor"`
	DefaultHAlign       *HAlign  `json:"defaultHAlign"`
	DefaultVAlign       *VAlign  `json:"defaultVAlign"`
}

// DraftCard references its background and icon by label.
type DraftCard struct {
	Title           string    `json:"title"`
	Count           FlexInt   `json:"count"`
	BackgroundLabel string    `json:"backgroundLabel"`
	IconLabel       string    `json:"iconLabel"`
	PrimaryText     CardText  `json:"primaryText"`
	SecondaryText   *CardText `json:"secondaryText"`
}

// FlexInt decodes a JSON number or numeric string. Anything else decodes to 0.
// Values are clamped to [0, MaxCardCount].
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*f = FlexInt(int(max(0, min(v, MaxCardCount))))
	return nil
}

// ErrNotObject is returned by ParseDraft when the payload is not a JSON object.
var ErrNotObject = errors.New("card game draft must be a JSON object")

// ParseDraft decodes model output leniently: keys with an unexpected shape
// are treated as absent, and individual list entries that fail to decode
// are skipped.
func ParseDraft(raw []byte) (Draft, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		if err != nil {
			return Draft{}, fmt.Errorf("%w: %v", ErrNotObject, err)
		}
		return Draft{}, ErrNotObject
	}

	var d Draft
	decodeField(top, "deckName", &d.DeckName)
	decodeField(top, "rules", &d.Rules)
	d.Backgrounds = decodeList[DraftBackground](top["backgrounds"])
	d.Icons = decodeList[DraftIcon](top["icons"])
	d.Cards = decodeList[DraftCard](top["cards"])

	var back DraftCardBack
	if raw, ok := top["cardBack"]; ok && isObject(raw) {
		_ = json.Unmarshal(raw, &back)
		d.CardBack = &back
	}
	if raw, ok := top["textSettings"]; ok && isObject(raw) {
		// Fields with the wrong type are skipped; the rest still apply.
		_ = json.Unmarshal(raw, &d.TextSettings)
	}
	var mode string
	decodeField(top, "showText", &mode)
	d.ShowText = ShowTextMode(mode)
	decodeField(top, "iconScale", &d.IconScale)
	return d, nil
}

func decodeField(top map[string]json.RawMessage, key string, dst any) {
	raw, ok := top[key]
	if !ok {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		var v T
		var typeErr *json.UnmarshalTypeError
		if err := json.Unmarshal(item, &v); err != nil && !errors.As(err, &typeErr) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func isObject(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "{")
}
