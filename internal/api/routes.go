package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/qr", qrHandler)
		api.GET("/blobs/:id", s.getBlob)
		api.POST("/images/chroma-key", s.chromaKey)
	}

	games := api.Group("/cardgames")
	{
		games.POST("", s.createCardGame)
		games.POST("/import", s.importCardGame)
		games.GET("/:id", s.getCardGame)
		games.GET("/:id/decklist", s.deckList)
		games.POST("/:id/export", s.exportCardGame)
		games.GET("/:id/cards/:cardId/preview", s.previewCard)
	}

	gen := api.Group("", s.rateLimit())
	{
		gen.POST("/cardgames/generate", s.generateCardGame)
		gen.POST("/cardgames/:id/assets", s.generateAssets)
		gen.POST("/frames", s.generateFrame)
	}
}
