package fonts

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryIsolated(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	require.NoError(t, a.Register("Fredoka", goregular.TTF))

	assert.True(t, a.Has("fredoka"))
	assert.False(t, b.Has("Fredoka"))
	assert.Equal(t, []string{"Fredoka"}, a.Names())
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("Fredoka", goregular.TTF))

	f := r.Resolve("FREDOKA")
	assert.False(t, f.Fallback)
	assert.Equal(t, "Fredoka", f.Name)
	assert.NotEmpty(t, f.TTF)

	f = r.Resolve("Unknown Sans")
	assert.True(t, f.Fallback)
	assert.Equal(t, FallbackPDFFamily, f.Name)

	var nilReg *Registry
	assert.True(t, nilReg.Resolve("x").Fallback)
	assert.Empty(t, nilReg.Names())
	assert.False(t, nilReg.Has("x"))

	r.Remove("fredoka")
	assert.False(t, r.Has("Fredoka"))
}

func TestRegistryRejectsBadFonts(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register("Broken", []byte("not a font")))
	assert.Error(t, r.Register(" ", goregular.TTF))
	assert.Empty(t, r.Names())
}

func TestRegistryFace(t *testing.T) {
	r := NewRegistry()
	face := r.Face("missing", 24)
	require.NotNil(t, face)
	assert.Greater(t, face.Metrics().Height.Ceil(), 0)
}

func TestFamilyName(t *testing.T) {
	assert.Equal(t, "Fredoka", FamilyName("Fredoka-Regular.ttf"))
	assert.Equal(t, "Nunito", FamilyName("sub/dir/Nunito_Bold.ttf"))
	assert.Equal(t, "Lexend", FamilyName("Lexend.ttf"))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Fredoka-Regular.ttf"), goregular.TTF, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "Nunito.ttf"), goregular.TTF, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken.ttf"), []byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	r := NewRegistry()
	n, err := LoadDir(r, dir, nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, r.Has("Fredoka"))
	assert.True(t, r.Has("Nunito"))
	assert.False(t, r.Has("Broken"))

	n, err = LoadDir(r, "", nil, nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandleEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Lexend-Bold.ttf")
	require.NoError(t, os.WriteFile(file, goregular.TTF, 0o644))

	r := NewRegistry()
	handleEvent(r, dir, nil, fsnotify.Event{Name: file, Op: fsnotify.Create}, quietLogger())
	assert.True(t, r.Has("Lexend"))

	handleEvent(r, dir, nil, fsnotify.Event{Name: filepath.Join(dir, "notes.md"), Op: fsnotify.Create}, quietLogger())
	assert.Equal(t, []string{"Lexend"}, r.Names())

	handleEvent(r, dir, nil, fsnotify.Event{Name: file, Op: fsnotify.Remove}, quietLogger())
	assert.False(t, r.Has("Lexend"))
}
