// Package fonts keeps the set of font families card texts can be rendered
// with. A Registry is an explicit value: tests and callers create their own
// instead of sharing process-wide state.
package fonts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// FallbackPDFFamily is the PDF core font used when a family is not registered.
const FallbackPDFFamily = "Helvetica"

// Family is the outcome of resolving a font name.
type Family struct {
	// Name is the registered family name, or FallbackPDFFamily.
	Name string
	// TTF holds the font program; nil for the fallback.
	TTF []byte
	// Fallback is true when the requested name was not registered.
	Fallback bool
}

// Registry maps family names (case-insensitive) to TrueType programs.
type Registry struct {
	mu    sync.RWMutex
	fonts map[string]entry
}

type entry struct {
	name string
	ttf  []byte
	font *truetype.Font
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fonts: make(map[string]entry)}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fonts[key(name)]
	return ok
}

// Register adds or replaces a family. ttf must be a parseable TrueType font.
func (r *Registry) Register(name string, ttf []byte) error {
	if key(name) == "" {
		return fmt.Errorf("register font: empty family name")
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("register font %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fonts[key(name)] = entry{name: strings.TrimSpace(name), ttf: ttf, font: f}
	return nil
}

// Remove drops a family; unknown names are ignored.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fonts, key(name))
}

// Names returns the registered family names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fonts))
	for _, e := range r.fonts {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the registered family for name or the fallback.
func (r *Registry) Resolve(name string) Family {
	if r != nil {
		r.mu.RLock()
		e, ok := r.fonts[key(name)]
		r.mu.RUnlock()
		if ok {
			return Family{Name: e.name, TTF: e.ttf}
		}
	}
	return Family{Name: FallbackPDFFamily, Fallback: true}
}

// Face returns a raster font face for name at size points (72 dpi). Unknown
// names use Go Bold.
func (r *Registry) Face(name string, size float64) font.Face {
	var f *truetype.Font
	if r != nil {
		r.mu.RLock()
		if e, ok := r.fonts[key(name)]; ok {
			f = e.font
		}
		r.mu.RUnlock()
	}
	if f == nil {
		f = fallbackFont()
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
}

// The embedded fallback is read-only and shared by every registry.
var (
	goBoldOnce sync.Once
	goBold     *truetype.Font
)

func fallbackFont() *truetype.Font {
	goBoldOnce.Do(func() {
		// gobold is embedded and always parses.
		goBold, _ = truetype.Parse(gobold.TTF)
	})
	return goBold
}
