package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/compositor"
	"github.com/youruser/therapydeck/internal/deck"
	"github.com/youruser/therapydeck/internal/generation"
	"github.com/youruser/therapydeck/internal/storage"
)

var generationStatus = map[generation.Kind]int{
	generation.KindUnavailable:     http.StatusServiceUnavailable,
	generation.KindQuotaExceeded:   http.StatusTooManyRequests,
	generation.KindContentRejected: http.StatusUnprocessableEntity,
	generation.KindGeneric:         http.StatusBadGateway,
}

// respondError maps err to a status and writes {"error": ...}.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ge *generation.GenerationError
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, compositor.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, compositor.ErrCardsPerPage), errors.Is(err, compositor.ErrEmptyDeck),
		errors.Is(err, cards.ErrNotObject), errors.Is(err, generation.ErrUnknownFrameType),
		errors.Is(err, deck.ErrDeckTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &ge):
		c.JSON(generationStatus[ge.Kind], gin.H{"error": ge.Message, "kind": ge.Kind})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " is not configured"})
}
