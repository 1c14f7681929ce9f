package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	colorize "github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/config"
)

// execute runs deckctl with args against a config path that does not exist,
// so every command sees the defaults.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	colorize.NoColor = true
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const draft = `{
	"deckName": "Worry Monsters",
	"backgrounds": [{"label": "Purple"}],
	"cardBack": {"imagePrompt": "swirls"},
	"cards": [
		{"title": "Name it", "count": 2, "backgroundLabel": "purple", "primaryText": {"content": "Name your worry"}},
		{"title": "Shrink it", "backgroundLabel": "PURPLE", "primaryText": {"content": "Make it small"}}
	]
}`

func resolveDraft(t *testing.T, dir string) (string, cards.Content) {
	t.Helper()
	in := writeFile(t, dir, "draft.json", []byte(draft))
	out := filepath.Join(dir, "content.json")
	_, stderr, err := execute(t, "resolve", in, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote "+out)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var c cards.Content
	require.NoError(t, json.Unmarshal(raw, &c))
	return out, c
}

func TestResolve(t *testing.T) {
	_, c := resolveDraft(t, t.TempDir())

	assert.Equal(t, "Worry Monsters", c.DeckName)
	require.Len(t, c.Cards, 2)
	assert.Equal(t, c.Backgrounds[0].ID, c.Cards[1].BackgroundID)
	assert.Equal(t, cards.CardBackKey, c.CardBack.ImageAssetKey)
	assert.NoError(t, c.Validate())
}

func TestResolveCSV(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "cards.csv", []byte("title,count,background\nBreathe,3,Blue\n"))

	stdout, _, err := execute(t, "resolve", in, "--name", "Calm")
	require.NoError(t, err)
	var c cards.Content
	require.NoError(t, json.Unmarshal([]byte(stdout), &c))
	assert.Equal(t, "Calm", c.DeckName)
	assert.Equal(t, 3, c.Cards[0].Count)
}

func TestResolveRejectsNonObject(t *testing.T) {
	in := writeFile(t, t.TempDir(), "draft.json", []byte(`"nope"`))
	_, _, err := execute(t, "resolve", in)
	assert.ErrorIs(t, err, cards.ErrNotObject)
}

func TestDeckList(t *testing.T) {
	path, _ := resolveDraft(t, t.TempDir())

	stdout, _, err := execute(t, "decklist", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{"# Worry Monsters", "2x Name it", "1x Shrink it", "total: 3"}, lines)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path, c := resolveDraft(t, dir)
	bg := writeFile(t, dir, "bg.png", solidPNG(t, 10, 14, color.NRGBA{R: 120, B: 200, A: 255}))
	assets, err := json.Marshal(map[string]string{
		c.Backgrounds[0].ImageAssetKey: "file:" + bg,
		cards.CardBackKey:              "file:" + bg,
	})
	require.NoError(t, err)
	assetsPath := writeFile(t, dir, "assets.json", assets)
	out := filepath.Join(dir, "deck.pdf")

	_, stderr, err := execute(t, "export", path, "-a", assetsPath, "-n", "4", "--backs", "-o", out)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "no asset for")

	pdf, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Contains(t, string(pdf), "/Count 2", "one front page and one back page")
}

func TestExportWarnsAboutMissingAssets(t *testing.T) {
	path, _ := resolveDraft(t, t.TempDir())

	stdout, stderr, err := execute(t, "export", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "no asset for card_back")
	assert.True(t, strings.HasPrefix(stdout, "%PDF-"))
}

func TestExportInvalidCardsPerPage(t *testing.T) {
	path, _ := resolveDraft(t, t.TempDir())
	_, _, err := execute(t, "export", path, "-n", "5")
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	path, c := resolveDraft(t, dir)
	out := filepath.Join(dir, "card.png")

	_, _, err := execute(t, "preview", path, "--card", c.Cards[1].ID, "--scale", "1", "-o", out)
	require.NoError(t, err)
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())

	_, _, err = execute(t, "preview", path, "--card", "missing")
	assert.Error(t, err)
}

func TestChroma(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "frame.png", solidPNG(t, 6, 3, color.NRGBA{G: 255, A: 255}))

	stdout, _, err := execute(t, "chroma", in, "--width", "12", "--height", "12")
	require.NoError(t, err)
	img, err := png.Decode(strings.NewReader(stdout))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 12), img.Bounds())
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "padding is keyed out")

	_, _, err = execute(t, "chroma", in, "-t", "300")
	assert.Error(t, err)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "therapydeck.toml")

	_, _, err := execute(t, "init-config", path)
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Export, cfg.Export)

	_, _, err = execute(t, "init-config", path)
	assert.Error(t, err, "existing file")
	_, _, err = execute(t, "init-config", path, "--force")
	assert.NoError(t, err)
}
