package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/blog-platform/internal/config"
	"github.com/spec-kit/blog-platform/internal/events"
)

// NotificationService reacts to auth events with notification stubs: a
// welcome email on signup and a security webhook when a refresh token is
// rejected.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserSignedUp, n.handleUserSignedUp)
	n.dispatcher.Subscribe(events.EventUserSignedIn, n.handleUserSignedIn)
	n.dispatcher.Subscribe(events.EventRefreshRejected, n.handleRefreshRejected)
}

func (n *NotificationService) handleUserSignedUp(ctx context.Context, event events.Event) error {
	n.logger.Info("UserSignedUp", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserSignedIn(_ context.Context, event events.Event) error {
	n.logger.Debug("UserSignedIn", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleRefreshRejected(ctx context.Context, event events.Event) error {
	n.logger.Warn("RefreshRejected", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}
