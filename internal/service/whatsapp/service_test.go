package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/gasdiary/internal/config"
	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/internal/service/notifications"
	client "github.com/mamadbah2/gasdiary/pkg/clients/whatsapp"
)

var _ notifications.Alerter = (*MetaWhatsAppService)(nil)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

func newTestService(c client.Client) *MetaWhatsAppService {
	return NewMetaWhatsAppService(config.WhatsAppConfig{OwnerPhone: "8801711000000"}, c, nil)
}

func TestSendAlertGoesToOwner(t *testing.T) {
	fake := &fakeClient{}
	svc := newTestService(fake)

	err := svc.SendAlert(context.Background(), models.Notification{
		ID:       "out_of_stock_lpg_omera",
		Priority: models.PriorityCritical,
		Title:    "Out of stock",
		Message:  "Omera 12kg has no full cylinders left",
	})
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "8801711000000", fake.sent[0].To)
	assert.Equal(t, "[CRITICAL] Out of stock\nOmera 12kg has no full cylinders left", fake.sent[0].Body)
}

func TestSendReport(t *testing.T) {
	fake := &fakeClient{}
	require.NoError(t, newTestService(fake).SendReport(context.Background(), "Weekly diary"))
	assert.Equal(t, "Weekly diary", fake.sent[0].Body)

	failing := newTestService(&fakeClient{err: errors.New("timeout")})
	assert.Error(t, failing.SendReport(context.Background(), "Weekly diary"))
}

func TestSendOutboundRejectsEmptyBody(t *testing.T) {
	fake := &fakeClient{}
	err := newTestService(fake).SendOutbound(context.Background(), models.OutboundMessageRequest{To: "1", Message: "  "})
	assert.Error(t, err)
	assert.Empty(t, fake.sent)
}
