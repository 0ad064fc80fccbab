package notify

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/logger"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/pkg/encrypt"
)

type Pusher interface {
	Push(ctx context.Context, userID uint, title, body, link string) error
}

// SubscriptionPusher loads the user's stored push subscriptions and
// decrypts them for delivery. Endpoint dispatch is handed to a
// transport callback so tests can capture it; the default transport
// logs the payload.
type SubscriptionPusher struct {
	db        *gorm.DB
	aesKey    string
	transport func(ctx context.Context, subscriptionJSON, title, body, link string) error
}

func NewSubscriptionPusher(db *gorm.DB, aesKey string) *SubscriptionPusher {
	return &SubscriptionPusher{db: db, aesKey: aesKey}
}

func (p *SubscriptionPusher) SetTransport(fn func(ctx context.Context, subscriptionJSON, title, body, link string) error) {
	p.transport = fn
}

func (p *SubscriptionPusher) Push(ctx context.Context, userID uint, title, body, link string) error {
	var subs []model.PushSubscription
	if err := p.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return err
	}

	var firstErr error
	for _, sub := range subs {
		raw, err := encrypt.AESDecrypt(p.aesKey, sub.Ciphertext)
		if err != nil {
			logger.L().Warn("push subscription decrypt failed",
				zap.Uint("subscription_id", sub.ID), zap.Error(err))
			continue
		}
		if p.transport != nil {
			if err := p.transport(ctx, raw, title, body, link); err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}
		logger.L().Info("push notification",
			zap.Uint("user_id", userID),
			zap.String("title", title),
			zap.String("body", body),
			zap.String("link", link))
	}
	return firstErr
}

// NoopPusher is used when push is disabled.
type NoopPusher struct{}

func (NoopPusher) Push(context.Context, uint, string, string, string) error { return nil }
