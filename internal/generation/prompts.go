package generation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/youruser/therapydeck/internal/cards"
)

// FrameType names a decorative frame layout.
type FrameType string

const (
	FrameFullPage FrameType = "full_page"
	FrameCard     FrameType = "card"
	FrameLabel    FrameType = "label"
	FrameIcon     FrameType = "icon"
)

// ChromaRegion says where the key green goes in a generated frame.
type ChromaRegion string

const (
	// RegionCenter keeps the middle of the frame green for content.
	RegionCenter ChromaRegion = "center"
	// RegionBackground keys the whole background around a subject.
	RegionBackground ChromaRegion = "background"
)

// FrameSpec is the canvas and prompt shape of one frame type.
type FrameSpec struct {
	Width       int
	Height      int
	Region      ChromaRegion
	BorderMin   int // percent of the canvas per side
	BorderMax   int
	Description string
}

var frameSpecs = map[FrameType]FrameSpec{
	FrameFullPage: {Width: 1240, Height: 1754, Region: RegionCenter, BorderMin: 5, BorderMax: 8,
		Description: "a decorative border for a full portrait A4 worksheet page"},
	FrameCard: {Width: 750, Height: 1050, Region: RegionCenter, BorderMin: 5, BorderMax: 8,
		Description: "a decorative border for a portrait playing card"},
	FrameLabel: {Width: 1200, Height: 400, Region: RegionCenter, BorderMin: 5, BorderMax: 8,
		Description: "a decorative border for a wide landscape label or banner"},
	FrameIcon: {Width: 512, Height: 512, Region: RegionBackground, BorderMin: 5, BorderMax: 8,
		Description: "a single small icon centred on the canvas"},
}

// ErrUnknownFrameType is returned for frame types outside the table.
var ErrUnknownFrameType = errors.New("unknown frame type")

// LookupFrame returns the frame settings of ft.
func LookupFrame(ft FrameType) (FrameSpec, error) {
	spec, ok := frameSpecs[ft]
	if !ok {
		return FrameSpec{}, fmt.Errorf("%w: %q", ErrUnknownFrameType, ft)
	}
	return spec, nil
}

// FrameTypes lists the known frame types, sorted.
func FrameTypes() []FrameType {
	out := make([]FrameType, 0, len(frameSpecs))
	for ft := range frameSpecs {
		out = append(out, ft)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Style is a visual theme applied to every generated image of a resource.
type Style struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Colors            []string `json:"colors"`
	IllustrationStyle string   `json:"illustrationStyle"`
}

func (s Style) describe() string {
	var parts []string
	if s.IllustrationStyle != "" {
		parts = append(parts, "Illustration style: "+s.IllustrationStyle+".")
	}
	if len(s.Colors) > 0 {
		parts = append(parts, "Colour palette: "+strings.Join(s.Colors, ", ")+".")
	}
	return strings.Join(parts, " ")
}

// BuildFramePrompt writes the image prompt for a frame. The prompt pins the
// key colour contract the post-processing relies on.
func BuildFramePrompt(style Style, ft FrameType) (string, error) {
	spec, err := LookupFrame(ft)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create %s, %dx%d pixels. ", spec.Description, spec.Width, spec.Height)
	if d := style.describe(); d != "" {
		b.WriteString(d + " ")
	}
	switch spec.Region {
	case RegionCenter:
		fmt.Fprintf(&b, "The decorative border must take up %d-%d%% of the canvas on each side. ", spec.BorderMin, spec.BorderMax)
		b.WriteString("Everything inside the border must be one flat, solid pure green (#00FF00) area with no texture, gradient, shadow or pattern. ")
		b.WriteString("Separate the border from the green area with a thin dark outline. ")
	case RegionBackground:
		fmt.Fprintf(&b, "Keep a margin of %d-%d%% of the canvas on each side. ", spec.BorderMin, spec.BorderMax)
		b.WriteString("The background must be one flat, solid pure green (#00FF00) with no texture, gradient or shadow. ")
		b.WriteString("Give the icon a thin dark outline and do not use green inside it. ")
	}
	b.WriteString("No text, letters or numbers.")
	return b.String(), nil
}

// AssetKind is what a card game asset job produces.
type AssetKind string

const (
	AssetBackground AssetKind = "background"
	AssetIcon       AssetKind = "icon"
	AssetCardBack   AssetKind = "card_back"
)

// BuildAssetPrompt wraps a content prompt for one card game asset.
func BuildAssetPrompt(kind AssetKind, prompt string, style Style) string {
	var b strings.Builder
	switch kind {
	case AssetBackground:
		b.WriteString("A full-bleed portrait playing card background filling the whole canvas. ")
	case AssetIcon:
		b.WriteString("A single centred icon on a flat, solid pure green (#00FF00) background with a thin dark outline. ")
	case AssetCardBack:
		b.WriteString("The back of a portrait playing card, symmetrical, filling the whole canvas. ")
	}
	b.WriteString(strings.TrimSpace(prompt))
	if d := style.describe(); d != "" {
		b.WriteString(" " + d)
	}
	b.WriteString(" No text, letters or numbers.")
	return b.String()
}

// BuildContentPrompt asks the text model for a card game draft in the
// label-referencing JSON shape the resolver accepts.
func BuildContentPrompt(description string, cardTarget int) string {
	if cardTarget <= 0 {
		cardTarget = 20
	}
	var b strings.Builder
	b.WriteString("You design printable therapy card games. ")
	fmt.Fprintf(&b, "Design a card game for: %s\n", strings.TrimSpace(description))
	fmt.Fprintf(&b, "Aim for about %d distinct cards. ", cardTarget)
	b.WriteString("Reply with JSON only, shaped as:\n")
	b.WriteString(`{"deckName": string, "rules": string,
 "backgrounds": [{"label": string, "color": "#RRGGBB", "imagePrompt": string}],
 "icons": [{"label": string, "imagePrompt": string}],
 "cardBack": {"imagePrompt": string},
 "textSettings": {"fontFamily": string, "defaultFontSize": number, "defaultColor": "#RRGGBB"},
 "cards": [{"title": string, "count": number, "backgroundLabel": string, "iconLabel": string,
            "primaryText": {"content": string}, "secondaryText": {"content": string}}],
 "showText": "all" | "numbers_only" | "none"}`)
	fmt.Fprintf(&b, "\nCards reference backgrounds and icons by label. characterPlacement is always %q.", cards.PlacementBackgrounds)
	return b.String()
}
