package compositor

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/deck"
)

func redDeck(count int, text string) *cards.Content {
	return &cards.Content{
		DeckName: "Colours",
		Backgrounds: []cards.Background{
			{ID: "b1", Label: "Red", Color: "#FF0000", ImageAssetKey: "card_bg:b1"},
		},
		Cards: []cards.Card{
			{ID: "c1", Title: "Red 1", Count: count, BackgroundID: "b1", PrimaryText: cards.CardText{Content: text}},
		},
		TextSettings: cards.BuiltinTextSettings,
		ShowText:     cards.ShowNumbersOnly,
	}
}

func countKind(layers []Layer, kind LayerKind) int {
	n := 0
	for _, l := range layers {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

func TestGridFor(t *testing.T) {
	cases := map[int]Grid{4: {2, 2}, 6: {2, 3}, 9: {3, 3}}
	for n, want := range cases {
		g, err := GridFor(n)
		require.NoError(t, err)
		assert.Equal(t, want, g)
		assert.Equal(t, n, g.Size())
	}
	for _, n := range []int{0, 1, 5, 8, 12} {
		_, err := GridFor(n)
		assert.True(t, errors.Is(err, ErrCardsPerPage), "n=%d", n)
	}
}

func TestGridCellsStayInsideMargins(t *testing.T) {
	for _, n := range []int{4, 6, 9} {
		g, _ := GridFor(n)
		last := g.Cell(g.Size() - 1)
		assert.InDelta(t, PageWidth-PageMargin, last.X+last.W, 1e-9)
		assert.InDelta(t, PageHeight-PageMargin, last.Y+last.H, 1e-9)
		first := g.Cell(0)
		assert.Equal(t, PageMargin, first.X)
		assert.Equal(t, PageMargin, first.Y)
		if g.Cols > 1 {
			assert.InDelta(t, CardGap, g.Cell(1).X-(first.X+first.W), 1e-9)
		}
	}
}

func TestLayoutFullPipelineScenario(t *testing.T) {
	content := redDeck(3, "1")
	assets := map[string]string{"card_bg:b1": "https://x/red.png"}

	doc, err := Layout(content, assets, Options{CardsPerPage: 9})
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)

	page := doc.Pages[0]
	assert.Equal(t, SideFront, page.Side)
	assert.Equal(t, []string{"c1", "c1", "c1"}, page.CardIDs)
	assert.Equal(t, 3, countKind(page.Layers, LayerImageCover))
	// eight outline copies plus the fill, per card
	assert.Equal(t, 27, countKind(page.Layers, LayerText))
	for _, l := range page.Layers {
		switch l.Kind {
		case LayerImageCover:
			assert.Equal(t, "https://x/red.png", l.URL)
		case LayerText:
			assert.Equal(t, "1", l.Text)
		}
	}
	assert.Equal(t, []string{"https://x/red.png"}, doc.ImageURLs())
}

func TestLayoutNumbersOnlyHidesWords(t *testing.T) {
	doc, err := Layout(redDeck(1, "SKIP"), nil, Options{CardsPerPage: 4})
	require.NoError(t, err)
	assert.Zero(t, countKind(doc.Pages[0].Layers, LayerText))
	// no asset URL, no background layer
	assert.Zero(t, countKind(doc.Pages[0].Layers, LayerImageCover))
}

func TestLayoutPagination(t *testing.T) {
	content := redDeck(10, "1")
	content.CardBack = &cards.CardBack{ImageAssetKey: cards.CardBackKey}

	doc, err := Layout(content, nil, Options{CardsPerPage: 4, IncludeCardBacks: true})
	require.NoError(t, err)
	assert.Len(t, doc.Pages, 3, "no back asset means no back pages")

	assets := map[string]string{cards.CardBackKey: "blob:back"}
	doc, err = Layout(content, assets, Options{CardsPerPage: 4, IncludeCardBacks: true})
	require.NoError(t, err)
	require.Len(t, doc.Pages, 6)
	assert.Equal(t, 3, doc.FrontPages())
	for i, p := range doc.Pages {
		if i%2 == 0 {
			assert.Equal(t, SideFront, p.Side)
			continue
		}
		assert.Equal(t, SideBack, p.Side)
		assert.Len(t, p.Layers, 4)
		for _, l := range p.Layers {
			assert.Equal(t, "blob:back", l.URL)
		}
	}
	assert.Len(t, doc.Pages[4].CardIDs, 2)
}

func TestLayoutErrors(t *testing.T) {
	_, err := Layout(redDeck(1, "1"), nil, Options{CardsPerPage: 5})
	assert.ErrorIs(t, err, ErrCardsPerPage)

	empty := redDeck(1, "1")
	empty.Cards = nil
	_, err = Layout(empty, nil, Options{CardsPerPage: 4})
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestLayoutRejectsOversizedDeck(t *testing.T) {
	content := redDeck(cards.MaxCardCount, "1")
	for i := 2; i <= 6; i++ {
		card := content.Cards[0]
		card.ID = fmt.Sprintf("c%d", i)
		content.Cards = append(content.Cards, card)
	}
	_, err := Layout(content, nil, Options{CardsPerPage: 9})
	assert.ErrorIs(t, err, deck.ErrDeckTooLarge)

	doc, err := Layout(content, nil, Options{CardsPerPage: 9, Filter: cards.FilterOptions{CardIDs: []string{"c1"}}})
	require.NoError(t, err)
	assert.Len(t, doc.Pages, (cards.MaxCardCount+8)/9)
}

func TestLayoutWatermarkIsLastOnEveryPage(t *testing.T) {
	content := redDeck(5, "2")
	content.CardBack = &cards.CardBack{ImageAssetKey: cards.CardBackKey}
	assets := map[string]string{cards.CardBackKey: "blob:back"}

	doc, err := Layout(content, assets, Options{CardsPerPage: 4, IncludeCardBacks: true, Watermark: true})
	require.NoError(t, err)
	require.Len(t, doc.Pages, 4)
	for _, p := range doc.Pages {
		last := p.Layers[len(p.Layers)-1]
		assert.Equal(t, LayerWatermark, last.Kind)
		assert.Equal(t, DefaultWatermarkText, last.Text)
		assert.Less(t, last.Opacity, 1.0)
	}
}

func TestLayoutShareCode(t *testing.T) {
	doc, err := Layout(redDeck(1, "1"), nil, Options{CardsPerPage: 4, ShareURL: "https://example.com/d/1"})
	require.NoError(t, err)
	layers := doc.Pages[0].Layers
	qr := layers[len(layers)-1]
	assert.Equal(t, LayerImageContain, qr.Kind)
	assert.NotEmpty(t, qr.Data)
	assert.Greater(t, qr.Box.X, PageWidth/2)
	assert.Greater(t, qr.Box.Y, PageHeight-PageMargin)
}

func TestCardLayersIcon(t *testing.T) {
	content := redDeck(1, "3")
	content.Icons = []cards.Icon{{ID: "i1", Label: "Star", ImageAssetKey: "card_icon:i1"}}
	content.Cards[0].IconID = "i1"
	content.IconScale = 0.5
	assets := map[string]string{"card_icon:i1": "blob:star"}

	cell := Rect{X: 10, Y: 20, W: 200, H: 300}
	layers := CardLayers(content.Cards[0], content, assets, cell)
	require.Equal(t, LayerImageContain, layers[0].Kind)
	icon := layers[0].Box
	assert.InDelta(t, 100.0, icon.W, 1e-9)
	assert.InDelta(t, 100.0, icon.H, 1e-9)
	assert.InDelta(t, 60.0, icon.X, 1e-9)
	assert.InDelta(t, 20+100-15, icon.Y, 1e-9)
}

func TestOutlinedText(t *testing.T) {
	text := cards.ResolvedText{
		Content: "7", FontFamily: "Fredoka", FontSize: 48,
		Color: "#FFFFFF", OutlineWidth: 3, OutlineColor: "#333333",
		HAlign: cards.AlignCenter, VAlign: cards.VAlignCenter,
	}
	cell := Rect{X: 0, Y: 0, W: 100, H: 200}
	layers := OutlinedText(text, cell, primaryAnchor)
	require.Len(t, layers, 9)

	fill := layers[8]
	assert.Equal(t, "#FFFFFF", fill.Color)
	assert.InDelta(t, 6.0, fill.Box.X, 1e-9)
	assert.InDelta(t, 88.0, fill.Box.W, 1e-9)
	assert.InDelta(t, 80.0, fill.Box.Y, 1e-9)

	seen := map[[2]float64]bool{}
	for _, l := range layers[:8] {
		assert.Equal(t, "#333333", l.Color)
		seen[[2]float64{math.Round(l.Box.X - fill.Box.X), math.Round(l.Box.Y - fill.Box.Y)}] = true
	}
	assert.Len(t, seen, 8)
	assert.True(t, seen[[2]float64{-3, -3}])
	assert.True(t, seen[[2]float64{3, 0}])
}

func TestAnchors(t *testing.T) {
	cell := Rect{Y: 100, H: 100}
	cases := []struct {
		fn    anchorFunc
		v     cards.VAlign
		y     float64
		along Anchor
	}{
		{primaryAnchor, cards.VAlignTop, 112, AnchorTop},
		{primaryAnchor, cards.VAlignCenter, 140, AnchorTop},
		{primaryAnchor, cards.VAlignBottom, 188, AnchorBottom},
		{secondaryAnchor, cards.VAlignTop, 128, AnchorTop},
		{secondaryAnchor, cards.VAlignCenter, 160, AnchorTop},
		{secondaryAnchor, cards.VAlignBottom, 195, AnchorBottom},
	}
	for _, c := range cases {
		y, a := c.fn(c.v, cell)
		assert.InDelta(t, c.y, y, 1e-9)
		assert.Equal(t, c.along, a)
	}
}
