package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	Templates *TemplateHandler
	Documents *DocumentHandler
	Logs      *LogsHandler
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		templates := v1.Group("/contract-templates")
		templates.POST("/validate", h.Templates.Validate)
		templates.POST("/preview", h.Templates.PreviewContent)
		templates.GET("/starters", h.Templates.ListStarters)
		templates.POST("/starters/:slug/install", h.Templates.InstallStarter)

		templates.GET("", h.Templates.List)
		templates.POST("", h.Templates.Create)
		templates.GET("/:id", h.Templates.Get)
		templates.PUT("/:id", h.Templates.Update)
		templates.DELETE("/:id", h.Templates.Delete)
		templates.POST("/:id/duplicate", h.Templates.Duplicate)
		templates.POST("/:id/default", h.Templates.SetDefault)
		templates.GET("/:id/preview", h.Templates.Preview)
		templates.GET("/:id/variables", h.Templates.Variables)
		templates.POST("/:id/generate", h.Documents.Generate)

		v1.PUT("/contracts/:contractId/context", h.Documents.PutContext)

		v1.GET("/documents/:id/download", h.Documents.Download)
		v1.GET("/documents/:id/url", h.Documents.DownloadURL)
		v1.DELETE("/documents/:id", h.Documents.Delete)

		if h.Logs != nil {
			v1.GET("/logs", h.Logs.GetAllLogs)
			v1.GET("/logs/stats", h.Logs.GetLogStats)
			v1.GET("/logs/history", h.Logs.GetHistory)
		}
	}
}
