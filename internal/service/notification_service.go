package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/org-service/internal/events"
)

// NotificationService handles emitting notifications for membership events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	webhookURL string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, webhookURL string) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		webhookURL: webhookURL,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventStaffJoined, n.handleStaffJoined)
	n.dispatcher.Subscribe(events.EventStaffLeft, n.handleStaffLeft)
	n.dispatcher.Subscribe(events.EventAccountProvisioned, n.handleAccountProvisioned)
	n.dispatcher.Subscribe(events.EventAccountDeprovisioned, n.handleAccountDeprovisioned)
}

func (n *NotificationService) handleStaffJoined(ctx context.Context, event events.Event) error {
	n.logger.Info("StaffJoined", zap.Int64("staff_id", event.StaffID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStaffLeft(ctx context.Context, event events.Event) error {
	n.logger.Info("StaffLeft", zap.Int64("staff_id", event.StaffID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAccountProvisioned(ctx context.Context, event events.Event) error {
	n.logger.Info("AccountProvisioned", zap.Int64("staff_id", event.StaffID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleAccountDeprovisioned(ctx context.Context, event events.Event) error {
	n.logger.Info("AccountDeprovisioned", zap.Int64("staff_id", event.StaffID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.webhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.webhookURL),
		zap.Int64("staff_id", event.StaffID),
		zap.String("event_type", string(event.Type)))
}
