package deck

import (
	"errors"
	"fmt"

	"github.com/youruser/therapydeck/internal/cards"
)

// MaxDeckSize caps the physical cards of one print job.
const MaxDeckSize = 5000

// ErrDeckTooLarge is returned by FromContent when the expanded deck would
// exceed MaxDeckSize cards.
var ErrDeckTooLarge = errors.New("deck too large to print")

// Deck is the ordered list of physical cards to print.
type Deck struct {
	Name  string       `json:"name"`
	Cards []cards.Card `json:"cards"`
}

// Size returns the number of physical cards cs expands to. The sum
// saturates at MaxDeckSize+1.
func Size(cs []cards.Card) int {
	total := 0
	for _, c := range cs {
		total += min(max(1, c.Count), MaxDeckSize+1)
		if total > MaxDeckSize {
			return MaxDeckSize + 1
		}
	}
	return total
}

// Expand repeats every card Count times, keeping input order, so copies of
// one card are contiguous. A count below 1 still prints one copy.
// Callers holding untrusted counts go through FromContent.
func Expand(cs []cards.Card) []cards.Card {
	out := make([]cards.Card, 0, Size(cs))
	for _, c := range cs {
		for i := 0; i < max(1, c.Count); i++ {
			out = append(out, c)
		}
	}
	return out
}

// FromContent builds the physical deck from the cards of c selected by opt.
func FromContent(c cards.Content, opt cards.FilterOptions) (Deck, error) {
	cs := cards.Filter(c.Cards, opt)
	if Size(cs) > MaxDeckSize {
		return Deck{}, fmt.Errorf("%w: %q expands to more than %d cards", ErrDeckTooLarge, c.DeckName, MaxDeckSize)
	}
	return Deck{Name: c.DeckName, Cards: Expand(cs)}, nil
}

// Pages splits the deck into consecutive chunks of at most perPage cards.
func (d Deck) Pages(perPage int) [][]cards.Card {
	return Pages(d.Cards, perPage)
}

// Pages splits cards into consecutive chunks of at most perPage cards.
func Pages(cs []cards.Card, perPage int) [][]cards.Card {
	if perPage <= 0 || len(cs) == 0 {
		return nil
	}
	pages := make([][]cards.Card, 0, (len(cs)+perPage-1)/perPage)
	for start := 0; start < len(cs); start += perPage {
		end := min(start+perPage, len(cs))
		pages = append(pages, cs[start:end])
	}
	return pages
}
