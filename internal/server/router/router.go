package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(buildings *handlers.BuildingHandler, occupancies *handlers.OccupancyHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	drafts := v1.Group("/building-drafts")
	drafts.POST("", buildings.CreateDraft)
	drafts.GET("/:draftId", buildings.GetDraft)
	drafts.PATCH("/:draftId", buildings.RenameDraft)
	drafts.DELETE("/:draftId", buildings.DiscardDraft)
	drafts.POST("/:draftId/templates", buildings.AddTemplate)
	drafts.PATCH("/:draftId/templates/:templateId", buildings.UpdateTemplate)
	drafts.DELETE("/:draftId/templates/:templateId", buildings.DeleteTemplate)
	drafts.PUT("/:draftId/floors", buildings.SetFloors)
	drafts.POST("/:draftId/units", buildings.AddUnits)
	drafts.PATCH("/:draftId/units/:unitId", buildings.UpdateUnit)
	drafts.DELETE("/:draftId/units/:unitId", buildings.RemoveUnit)
	drafts.POST("/:draftId/save", buildings.SaveDraft)

	v1.GET("/buildings/:buildingId", buildings.GetBuilding)
	v1.POST("/buildings/:buildingId/drafts", buildings.OpenDraft)

	occ := v1.Group("/occupancies/:propertyId")
	occ.GET("", occupancies.Status)
	occ.GET("/history", occupancies.History)
	occ.POST("/extend", occupancies.Extend)
	occ.POST("/cancel", occupancies.Cancel)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
