package compositor

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func runeWidth(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func TestWrapText(t *testing.T) {
	cases := []struct {
		in    string
		width float64
		want  []string
	}{
		{"7", 10, []string{"7"}},
		{"take two cards", 9, []string{"take two", "cards"}},
		{"take two cards", 100, []string{"take two cards"}},
		{"unbreakable word", 4, []string{"unbreakable", "word"}},
		{"a\nb c", 10, []string{"a", "b c"}},
		{"", 10, []string{""}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, wrapText(c.in, c.width, runeWidth), c.in)
	}
}

func TestBlockTop(t *testing.T) {
	assert.Equal(t, 100.0, blockTop(100, AnchorTop, 3, 10))
	assert.Equal(t, 70.0, blockTop(100, AnchorBottom, 3, 10))
}
