package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pdfshrink/internal/domain/repositories"
)

const (
	// RequestIDHeader заголовок с идентификатором запроса
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	loggerKey    = "logger"
)

// RequestID присваивает запросу UUID. Корректный UUID клиента сохраняется.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger пишет строку на каждый запрос и кладет в контекст логгер с request_id
func RequestLogger(logger repositories.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger == nil {
			c.Next()
			return
		}

		reqLogger := logger.With(requestIDKey, c.GetString(requestIDKey))
		c.Set(loggerKey, reqLogger)

		start := time.Now()
		c.Next()

		reqLogger.Info("%s %s → %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

func requestLogger(c *gin.Context) repositories.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(repositories.Logger); ok {
			return l
		}
	}
	return nil
}
