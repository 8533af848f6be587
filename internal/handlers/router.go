package handlers

import (
	"time"

	"DF-DOCGEN/internal/middleware"
	"DF-DOCGEN/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowOrigins []string
	// FilesRoot, when set, is served under /files so public artifact URLs
	// resolve against the local store.
	FilesRoot string
}

type Handlers struct {
	Templates *TemplateHandler
	Documents *DocumentHandler
	Reference *ReferenceHandler
	Logs      *LogsHandler
}

func NewRouter(cfg RouterConfig, h Handlers, auth *middleware.AuthMiddleware, activity *services.ActivityLogService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: len(origins) != 1 || origins[0] != "*",
		MaxAge:           12 * time.Hour,
	}))
	r.Use(auth.Authenticate())
	if activity != nil {
		r.Use(activity.LoggingMiddleware())
	}

	if cfg.FilesRoot != "" {
		r.Static("/files", cfg.FilesRoot)
	}

	v1 := r.Group("/api/v1")
	{
		templates := v1.Group("/templates")
		{
			templates.POST("", h.Templates.Upload)
			templates.GET("", h.Templates.List)
			templates.DELETE("/:templateId", h.Templates.Delete)
			templates.GET("/:templateId/anchors", h.Templates.GetAnchors)
			templates.POST("/:templateId/preview", h.Templates.Preview)
			templates.POST("/:templateId/generate", h.Templates.Generate)
		}

		v1.POST("/document-types/:typeId/generate", h.Templates.GenerateForType)
		v1.GET("/document-types", h.Reference.ListDocumentTypes)
		v1.POST("/document-types", h.Reference.CreateDocumentType)

		documents := v1.Group("/documents")
		{
			documents.GET("", h.Documents.List)
			documents.GET("/all", h.Documents.GetAll)
			documents.POST("/upload", h.Documents.Upload)
			documents.GET("/:documentId", h.Documents.Get)
			documents.DELETE("/:documentId", h.Documents.Delete)
		}

		currencies := v1.Group("/currencies")
		{
			currencies.GET("", h.Reference.ListCurrencies)
			currencies.POST("", h.Reference.AddCurrency)
			currencies.GET("/:id", h.Reference.GetCurrency)
			currencies.PUT("/:id", h.Reference.UpdateCurrency)
			currencies.DELETE("/:id", h.Reference.DeleteCurrency)
		}

		v1.GET("/cases", h.Reference.ListCases)
		v1.POST("/cases", h.Reference.CreateCase)

		v1.GET("/logs", h.Logs.GetAllLogs)
		v1.GET("/logs/generations", h.Logs.GetGenerationLogs)
	}

	return r
}
