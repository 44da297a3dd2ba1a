package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/server/handlers"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Handlers groups the HTTP handlers the router mounts. Messages may be nil
// when outbound messaging is disabled.
type Handlers struct {
	Diary         *handlers.DiaryHandler
	Notifications *handlers.NotificationHandler
	Messages      *handlers.MessageHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	d := r.Group("/diary")
	d.GET("/sales", h.Diary.Sales)
	d.GET("/expenses", h.Diary.Expenses)
	d.GET("/analytics", h.Diary.Analytics)
	d.GET("/status", h.Diary.Status)
	d.POST("/refetch", h.Diary.Refetch)

	n := r.Group("/notifications")
	n.GET("", h.Notifications.List)
	n.DELETE("", h.Notifications.Clear)
	n.POST("/read-all", h.Notifications.MarkAllRead)
	n.POST("/:id/read", h.Notifications.MarkRead)
	n.POST("/:id/open", h.Notifications.Open)

	if h.Messages != nil {
		r.POST("/send-message", h.Messages.SendMessage)
	}

	logger.Info("router initialized")
	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)))
	}
}
