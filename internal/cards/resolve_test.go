package cards

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func TestPostProcessResolvesLabels(t *testing.T) {
	d := Draft{
		Backgrounds: []DraftBackground{
			{Label: "Red", Color: "#ff0000", ImagePrompt: "red swirl"},
			{Label: "Blue", Color: "#0000ff", ImagePrompt: "blue waves"},
			{Label: "Green", Color: "#00aa00", ImagePrompt: "leaves"},
		},
		Icons: []DraftIcon{{Label: "Happy", ImagePrompt: "smiling sun"}},
		Cards: []DraftCard{
			{Title: "Blue 1", Count: 2, BackgroundLabel: "BLUE", IconLabel: "happy", PrimaryText: CardText{Content: "1"}},
			{Title: "Mystery", BackgroundLabel: "Purple", IconLabel: "Sad"},
			{Title: "Green", BackgroundLabel: "green"},
		},
	}
	c := (&Resolver{NewID: seqIDs()}).PostProcess(d)

	require.Len(t, c.Backgrounds, 3)
	ids := map[string]bool{}
	for _, b := range c.Backgrounds {
		ids[b.ID] = true
		assert.Equal(t, BackgroundKey(b.ID), b.ImageAssetKey)
	}
	assert.Len(t, ids, 3)
	require.Len(t, c.Icons, 1)
	assert.Equal(t, "card_icon:"+c.Icons[0].ID, c.Icons[0].ImageAssetKey)

	require.Len(t, c.Cards, 3)
	assert.Equal(t, c.Backgrounds[1].ID, c.Cards[0].BackgroundID)
	assert.Equal(t, c.Icons[0].ID, c.Cards[0].IconID)
	assert.Equal(t, 2, c.Cards[0].Count)

	// Unknown background falls back to the first; unknown icon stays empty.
	assert.Equal(t, c.Backgrounds[0].ID, c.Cards[1].BackgroundID)
	assert.Empty(t, c.Cards[1].IconID)
	assert.Equal(t, 1, c.Cards[1].Count)

	assert.Equal(t, c.Backgrounds[2].ID, c.Cards[2].BackgroundID)
	assert.NoError(t, c.Validate())
}

func TestPostProcessDuplicateLabelLastWins(t *testing.T) {
	d := Draft{
		Backgrounds: []DraftBackground{{Label: "Calm"}, {Label: "calm"}},
		Cards:       []DraftCard{{Title: "x", BackgroundLabel: "CALM"}},
	}
	c := (&Resolver{NewID: seqIDs()}).PostProcess(d)
	assert.Equal(t, c.Backgrounds[1].ID, c.Cards[0].BackgroundID)
}

func TestPostProcessDefaults(t *testing.T) {
	c := NewResolver().PostProcess(Draft{})
	assert.Equal(t, BuiltinTextSettings, c.TextSettings)
	assert.Equal(t, ShowAll, c.ShowText)
	assert.Equal(t, PlacementBackgrounds, c.CharacterPlacement)
	assert.Nil(t, c.CardBack)
	assert.Empty(t, c.Cards)
	assert.Equal(t, DefaultIconScale, c.IconScaleOrDefault())
}

func TestPostProcessPartialTextSettings(t *testing.T) {
	font := "Comic Neue"
	size := 30.0
	bad := HAlign("diagonal")
	d := Draft{
		TextSettings: DraftTextSettings{FontFamily: &font, DefaultFontSize: &size, DefaultHAlign: &bad},
		CardBack:     &DraftCardBack{ImagePrompt: "stars"},
		ShowText:     "NUMBERS_ONLY",
	}
	c := NewResolver().PostProcess(d)
	assert.Equal(t, "Comic Neue", c.TextSettings.FontFamily)
	assert.Equal(t, 30.0, c.TextSettings.DefaultFontSize)
	assert.Equal(t, "#FFFFFF", c.TextSettings.DefaultColor)
	assert.Equal(t, AlignCenter, c.TextSettings.DefaultHAlign)
	require.NotNil(t, c.CardBack)
	assert.Equal(t, CardBackKey, c.CardBack.ImageAssetKey)
	assert.Equal(t, ShowNumbersOnly, c.ShowText)
}

func TestPostProcessCopiesOverridesOnlyWhenPresent(t *testing.T) {
	size := 20.0
	left := HAlign("LEFT")
	d := Draft{
		Backgrounds: []DraftBackground{{Label: "a"}},
		Cards: []DraftCard{{
			Title:           "c",
			BackgroundLabel: "a",
			PrimaryText:     CardText{Content: "SKIP", FontSize: &size, HAlign: &left},
			SecondaryText:   &CardText{Content: "lose a turn"},
		}},
	}
	c := NewResolver().PostProcess(d)
	card := c.Cards[0]
	require.NotNil(t, card.PrimaryText.FontSize)
	assert.Equal(t, 20.0, *card.PrimaryText.FontSize)
	require.NotNil(t, card.PrimaryText.HAlign)
	assert.Equal(t, AlignLeft, *card.PrimaryText.HAlign)
	assert.Nil(t, card.PrimaryText.Color)
	assert.Nil(t, card.PrimaryText.VAlign)
	require.NotNil(t, card.SecondaryText)
	assert.Nil(t, card.SecondaryText.FontSize)
}

func TestPostProcessIDsAreUnique(t *testing.T) {
	d := Draft{
		Backgrounds: []DraftBackground{{Label: "a"}, {Label: "b"}},
		Icons:       []DraftIcon{{Label: "a"}},
		Cards:       []DraftCard{{Title: "1"}, {Title: "2"}},
	}
	c := NewResolver().PostProcess(d)
	seen := map[string]bool{}
	for _, id := range []string{c.Backgrounds[0].ID, c.Backgrounds[1].ID, c.Icons[0].ID, c.Cards[0].ID, c.Cards[1].ID} {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestContentLookups(t *testing.T) {
	c := Content{
		Backgrounds: []Background{{ID: "b1"}, {ID: "b2"}},
		Icons:       []Icon{{ID: "i1"}},
		Cards:       []Card{{ID: "c1", Count: 1}},
	}
	b, ok := c.Background("b2")
	assert.True(t, ok)
	assert.Equal(t, "b2", b.ID)
	b, ok = c.Background("missing")
	assert.True(t, ok)
	assert.Equal(t, "b1", b.ID)

	_, ok = c.Icon("")
	assert.False(t, ok)
	_, ok = c.Icon("i1")
	assert.True(t, ok)

	_, ok = (&Content{}).Background("x")
	assert.False(t, ok)
}

func TestContentValidate(t *testing.T) {
	c := Content{
		Backgrounds: []Background{{ID: "a", ImageAssetKey: "card_bg:a"}, {ID: "b", ImageAssetKey: "card_bg:a"}},
	}
	assert.Error(t, c.Validate())

	c = Content{Cards: []Card{{ID: "x", Count: 0}}}
	assert.ErrorIs(t, c.Validate(), ErrInvalidContent)

	c = Content{Cards: []Card{{ID: "x", Count: MaxCardCount + 1}}}
	assert.ErrorIs(t, c.Validate(), ErrInvalidContent)

	c = Content{Cards: []Card{{ID: "x", Count: MaxCardCount}, {ID: "x", Count: 1}}}
	assert.ErrorIs(t, c.Validate(), ErrInvalidContent)

	c = Content{Cards: []Card{{ID: "x", Count: MaxCardCount}}}
	assert.NoError(t, c.Validate())
}

func TestPostProcessClampsCount(t *testing.T) {
	d := Draft{Cards: []DraftCard{{Title: "huge", Count: FlexInt(math.MaxInt)}, {Title: "none", Count: -3}}}
	c := (&Resolver{NewID: seqIDs()}).PostProcess(d)
	require.Len(t, c.Cards, 2)
	assert.Equal(t, MaxCardCount, c.Cards[0].Count)
	assert.Equal(t, 1, c.Cards[1].Count)
	assert.NoError(t, c.Validate())
}
