package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

// OutboundSender pushes a text message through the messaging provider.
type OutboundSender interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MessageHandler lets operators push messages from the back office.
type MessageHandler struct {
	svc    OutboundSender
	logger *zap.Logger
}

// NewMessageHandler constructs the HTTP handler adapter.
func NewMessageHandler(svc OutboundSender, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{svc: svc, logger: logger}
}

// SendMessage allows sending a manual message to any number.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}
