// Package notify delivers push notifications to item owners.
package notify

import (
	"context"
	"errors"
	"fmt"

	"giveup-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

var (
	// ErrNoDeviceToken is returned when a push has no recipient
	ErrNoDeviceToken = errors.New("device token is empty")
	// ErrPushDisabled is returned by Noop; nothing was delivered
	ErrPushDisabled = errors.New("push notifications are disabled")
)

// APNsPusher sends alerts through Apple Push Notification service
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher creates a token-authenticated APNs client from a .p8 key
func NewAPNsPusher(cfg config.APNsConfig) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: cfg.Topic}, nil
}

// Push sends an alert with title and body to deviceToken
func (p *APNsPusher) Push(ctx context.Context, deviceToken, title, body string) error {
	notification := newNotification(p.topic, deviceToken, title, body)
	if notification == nil {
		return ErrNoDeviceToken
	}

	resp, err := p.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !resp.Sent() {
		return fmt.Errorf("push rejected: %d %s", resp.StatusCode, resp.Reason)
	}

	log.Debug().Str("apns_id", resp.ApnsID).Msg("Push notification sent")
	return nil
}

func newNotification(topic, deviceToken, title, body string) *apns2.Notification {
	if deviceToken == "" {
		return nil
	}
	return &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}
}

// Noop drops every notification. It is used when APNs is not configured.
type Noop struct{}

// Push discards the notification and reports ErrPushDisabled
func (Noop) Push(_ context.Context, deviceToken, title, _ string) error {
	if deviceToken == "" {
		return ErrNoDeviceToken
	}
	log.Debug().Str("title", title).Msg("Push notifications disabled; dropping notification")
	return ErrPushDisabled
}
