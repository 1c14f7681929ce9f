package cards

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV columns understood by LoadDraftCSV. Only "title" is required.
const (
	colTitle      = "title"
	colCount      = "count"
	colBackground = "background"
	colIcon       = "icon"
	colPrimary    = "primary_text"
	colSecondary  = "secondary_text"
)

// LoadDraftCSV reads a card list with a header row and returns a draft.
// Backgrounds and icons are created from the distinct labels the rows use,
// in order of first appearance, with the label as their image prompt.
func LoadDraftCSV(r io.Reader) (Draft, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Draft{}, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) < 1 {
		return Draft{}, fmt.Errorf("csv has no header")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colTitle]; !ok {
		return Draft{}, fmt.Errorf("csv header is missing %q column", colTitle)
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var d Draft
	seenBg := map[string]bool{}
	seenIcon := map[string]bool{}
	for _, row := range rows[1:] {
		title := get(row, colTitle)
		if title == "" {
			continue
		}
		card := DraftCard{
			Title:           title,
			Count:           1,
			BackgroundLabel: get(row, colBackground),
			IconLabel:       get(row, colIcon),
			PrimaryText:     CardText{Content: get(row, colPrimary)},
		}
		if v, err := strconv.Atoi(get(row, colCount)); err == nil && v > 0 {
			card.Count = FlexInt(v)
		}
		if s := get(row, colSecondary); s != "" {
			card.SecondaryText = &CardText{Content: s}
		}

		if l := card.BackgroundLabel; l != "" && !seenBg[strings.ToLower(l)] {
			seenBg[strings.ToLower(l)] = true
			d.Backgrounds = append(d.Backgrounds, DraftBackground{Label: l, ImagePrompt: l})
		}
		if l := card.IconLabel; l != "" && !seenIcon[strings.ToLower(l)] {
			seenIcon[strings.ToLower(l)] = true
			d.Icons = append(d.Icons, DraftIcon{Label: l, ImagePrompt: l})
		}
		d.Cards = append(d.Cards, card)
	}
	return d, nil
}
