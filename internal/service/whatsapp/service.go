package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/config"
	"github.com/mamadbah2/gasdiary/internal/domain/models"
	client "github.com/mamadbah2/gasdiary/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

var errEmptyMessage = errors.New("message body is empty")

// MessagingService describes the outbound operations the rest of the app uses.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	SendAlert(ctx context.Context, n models.Notification) error
	SendReport(ctx context.Context, text string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg    config.WhatsAppConfig
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// SendOutbound pushes a text message to any number.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return errEmptyMessage
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	if err != nil {
		return err
	}

	if len(resp.Messages) > 0 {
		s.logger.Debug("whatsapp message sent", zap.String("message_id", resp.Messages[0].ID))
	}
	return nil
}

// SendAlert delivers a critical notification to the owner.
func (s *MetaWhatsAppService) SendAlert(ctx context.Context, n models.Notification) error {
	return s.SendOutbound(ctx, models.OutboundMessageRequest{
		To:      s.cfg.OwnerPhone,
		Message: FormatAlert(n),
	})
}

// SendReport delivers a report text to the owner.
func (s *MetaWhatsAppService) SendReport(ctx context.Context, text string) error {
	if err := s.SendOutbound(ctx, models.OutboundMessageRequest{To: s.cfg.OwnerPhone, Message: text}); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// FormatAlert renders a notification as a message body.
func FormatAlert(n models.Notification) string {
	return fmt.Sprintf("[%s] %s\n%s", strings.ToUpper(string(n.Priority)), n.Title, n.Message)
}
