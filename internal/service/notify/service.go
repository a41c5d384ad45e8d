package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/config"
	"github.com/Xebarter/Leap-sub002/internal/domain/models"
	client "github.com/Xebarter/Leap-sub002/pkg/clients/whatsapp"
)

const dateLayout = "2006-01-02"

// ErrMissingRecipient indicates the tenant has no phone number on file.
var ErrMissingRecipient = errors.New("tenant has no contact number")

// Notifier delivers tenant-facing occupancy notifications.
type Notifier interface {
	RemindExpiring(ctx context.Context, rec models.OccupancyRecord, daysRemaining int) error
	SendOutbound(ctx context.Context, msg models.ReminderMessage) error
}

// WhatsAppNotifier is the production implementation backed by WhatsApp Cloud API.
type WhatsAppNotifier struct {
	cfg    config.WhatsAppConfig
	client client.Client
	logger *zap.Logger
}

// NewWhatsAppNotifier wires a new notifier instance.
func NewWhatsAppNotifier(cfg config.WhatsAppConfig, client client.Client, logger *zap.Logger) *WhatsAppNotifier {
	svc := &WhatsAppNotifier{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// RemindExpiring sends the expiry reminder template to the tenant of rec.
func (s *WhatsAppNotifier) RemindExpiring(ctx context.Context, rec models.OccupancyRecord, daysRemaining int) error {
	if rec.TenantPhone == "" {
		return fmt.Errorf("%w: occupancy %s", ErrMissingRecipient, rec.ID)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.client.SendTemplateMessage(ctxWithTimeout, client.SendTemplateMessageRequest{
		To:           rec.TenantPhone,
		TemplateName: s.cfg.ReminderTemplate,
		LanguageCode: s.cfg.LanguageCode,
		BodyParams:   []string{strconv.Itoa(daysRemaining), rec.EndDate.Format(dateLayout)},
	})
	if err != nil {
		return fmt.Errorf("send reminder for occupancy %s: %w", rec.ID, err)
	}

	fields := []zap.Field{zap.String("occupancy_id", rec.ID), zap.Int("days_remaining", daysRemaining)}
	if len(resp.Messages) > 0 {
		fields = append(fields, zap.String("message_id", resp.Messages[0].ID))
	}
	s.logger.Info("expiry reminder sent", fields...)
	return nil
}

// SendOutbound pushes a free-form text message, e.g. a cancellation notice.
func (s *WhatsAppNotifier) SendOutbound(ctx context.Context, msg models.ReminderMessage) error {
	if msg.To == "" {
		return ErrMissingRecipient
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   msg.To,
		Body: msg.Message,
	})
	return err
}

// LogNotifier only logs notifications. It is used when WhatsApp is not configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier returns a notifier that writes to logger instead of sending.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// RemindExpiring implements Notifier.
func (n *LogNotifier) RemindExpiring(_ context.Context, rec models.OccupancyRecord, daysRemaining int) error {
	n.logger.Info("expiry reminder skipped, messaging disabled",
		zap.String("occupancy_id", rec.ID),
		zap.Int("days_remaining", daysRemaining))
	return nil
}

// SendOutbound implements Notifier.
func (n *LogNotifier) SendOutbound(_ context.Context, msg models.ReminderMessage) error {
	n.logger.Info("outbound message skipped, messaging disabled", zap.String("to", msg.To))
	return nil
}
