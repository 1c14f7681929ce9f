package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	all := []Card{
		{ID: "a", Title: "Red 1", BackgroundID: "red", PrimaryText: CardText{Content: "1"}},
		{ID: "b", Title: "Red Skip", BackgroundID: "red", IconID: "kettle", PrimaryText: CardText{Content: "SKIP"},
			SecondaryText: &CardText{Content: "Take a deep breath"}},
		{ID: "c", Title: "Blue 1", BackgroundID: "blue", PrimaryText: CardText{Content: "1"}},
	}

	assert.Len(t, Filter(all, FilterOptions{}), 3)
	assert.Equal(t, []Card{all[2]}, Filter(all, FilterOptions{BackgroundIDs: []string{"blue"}}))
	assert.Equal(t, []Card{all[1]}, Filter(all, FilterOptions{IconIDs: []string{"kettle"}}))
	assert.Equal(t, []Card{all[0], all[2]}, Filter(all, FilterOptions{CardIDs: []string{"c", "a"}}))
	assert.Equal(t, []Card{all[1]}, Filter(all, FilterOptions{FreeWords: "deep red"}))
	assert.Empty(t, Filter(all, FilterOptions{FreeWords: "green"}))
}
