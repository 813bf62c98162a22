// Package api HTTP интерфейс сжатия PDF на gin.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/domain/repositories"
	usecases "pdfshrink/internal/usecase"
)

// Handler обработчики HTTP запросов
type Handler struct {
	compress   *usecases.CompressPDFUseCase
	limit      *usecases.CompressToLimitUseCase
	configRepo repositories.ConfigRepository
	grid       entities.SearchGrid
	maxUpload  int64
	logger     repositories.Logger
}

// NewHandler создает обработчики. Сценарии не должны иметь получателя прогресса:
// они используются параллельно из нескольких запросов.
func NewHandler(
	compress *usecases.CompressPDFUseCase,
	limit *usecases.CompressToLimitUseCase,
	configRepo repositories.ConfigRepository,
	grid entities.SearchGrid,
	maxUploadMB int,
	logger repositories.Logger,
) *Handler {
	return &Handler{
		compress:   compress,
		limit:      limit,
		configRepo: configRepo,
		grid:       grid,
		maxUpload:  entities.MBToBytes(maxUploadMB),
		logger:     logger,
	}
}

// NewRouter создает gin engine со всеми маршрутами
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(h.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "pdfshrink",
		})
	})

	apiGroup := r.Group("/api/pdf")
	{
		apiGroup.GET("/params", h.HandleParams)
		apiGroup.GET("/grid", h.HandleGrid)
		apiGroup.POST("/compress", h.HandleCompress)
		apiGroup.POST("/compress-to-limit", h.HandleCompressToLimit)
	}

	return r
}
