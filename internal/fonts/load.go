package fonts

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns match TrueType files anywhere below the font directory.
var DefaultPatterns = []string{"**/*.ttf", "**/*.TTF"}

// FamilyName derives a family name from a font file name:
// "fonts/Fredoka-Regular.ttf" -> "Fredoka".
func FamilyName(file string) string {
	base := strings.TrimSuffix(path.Base(file), path.Ext(file))
	if i := strings.IndexAny(base, "-_"); i > 0 {
		base = base[:i]
	}
	return base
}

// LoadDir registers every font in dir matching patterns and returns the
// number registered. Files that fail to parse are logged and skipped.
func LoadDir(r *Registry, dir string, patterns []string, logger *slog.Logger) (int, error) {
	if dir == "" {
		return 0, nil
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if logger == nil {
		logger = slog.Default()
	}
	fsys := os.DirFS(dir)

	seen := map[string]bool{}
	n := 0
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return n, fmt.Errorf("glob %q in %s: %w", pattern, dir, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			if err := registerFile(r, fsys, m); err != nil {
				logger.Warn("skipping font file", "file", m, "error", err)
				continue
			}
			n++
		}
	}
	return n, nil
}

func registerFile(r *Registry, fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	return r.Register(FamilyName(name), data)
}

// matchesAny reports whether rel matches one of patterns.
func matchesAny(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
