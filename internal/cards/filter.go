package cards

import "strings"

// FilterOptions selects a subset of cards, e.g. to reprint lost cards.
// Empty fields do not filter.
type FilterOptions struct {
	CardIDs       []string `json:"cardIds"`
	BackgroundIDs []string `json:"backgroundIds"`
	IconIDs       []string `json:"iconIds"`
	FreeWords     string   `json:"freeWords"`
}

// IsZero reports whether opt selects every card.
func (opt FilterOptions) IsZero() bool {
	return len(opt.CardIDs) == 0 && len(opt.BackgroundIDs) == 0 &&
		len(opt.IconIDs) == 0 && strings.TrimSpace(opt.FreeWords) == ""
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Filter returns the cards matching every set criterion, in input order.
// Free words must all appear (case-insensitively) in the title or a text.
func Filter(cards []Card, opt FilterOptions) []Card {
	if opt.IsZero() {
		return cards
	}
	var out []Card
	for _, c := range cards {
		if len(opt.CardIDs) > 0 && !contains(opt.CardIDs, c.ID) {
			continue
		}
		if len(opt.BackgroundIDs) > 0 && !contains(opt.BackgroundIDs, c.BackgroundID) {
			continue
		}
		if len(opt.IconIDs) > 0 && !contains(opt.IconIDs, c.IconID) {
			continue
		}
		if opt.FreeWords != "" {
			hay := strings.ToLower(c.Title + " " + c.PrimaryText.Content)
			if c.SecondaryText != nil {
				hay += " " + strings.ToLower(c.SecondaryText.Content)
			}
			ok := true
			for _, k := range strings.Fields(opt.FreeWords) {
				if !strings.Contains(hay, strings.ToLower(k)) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
