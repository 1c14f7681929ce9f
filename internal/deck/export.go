package deck

import (
	"strconv"
	"strings"

	"github.com/youruser/therapydeck/internal/cards"
)

// ExportDeckText renders a plain-text deck list, one "<count>x<title>" line
// per card design in document order, followed by the total.
func ExportDeckText(c cards.Content) string {
	lines := []string{}
	if c.DeckName != "" {
		lines = append(lines, "# "+c.DeckName)
	}
	total := 0
	for _, card := range c.Cards {
		n := max(1, card.Count)
		total += n
		title := card.Title
		if title == "" {
			title = card.PrimaryText.Content
		}
		lines = append(lines, strconv.Itoa(n)+"x "+strings.TrimSpace(title))
	}
	lines = append(lines, "total: "+strconv.Itoa(total))
	return strings.Join(lines, "\n")
}
