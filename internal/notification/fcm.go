package notification

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/shenikar/railguard/internal/config"
	"google.golang.org/api/option"
)

// FCMSender отправляет data-only push через Firebase Cloud Messaging
type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(ctx context.Context, cfg *config.Config) (*FCMSender, error) {
	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.FirebaseProjectID,
		"client_email": cfg.FirebaseClientEmail,
		"private_key":  cfg.FirebasePrivateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build firebase credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}
	return &FCMSender{client: client}, nil
}

// SendPush отправляет уведомление на устройство и возвращает id сообщения
func (s *FCMSender) SendPush(ctx context.Context, token, title, body string) (string, error) {
	id, err := s.client.Send(ctx, BuildPushMessage(token, title, body))
	if err != nil {
		return "", fmt.Errorf("fcm: failed to send push: %w", err)
	}
	return id, nil
}

// BuildPushMessage - сообщение только с data-полями, приложение показывает его само.
// Android получает высокий приоритет, iOS - фоновую доставку.
func BuildPushMessage(token, title, body string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Data: map[string]string{
			"title": title,
			"body":  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "5",
				"apns-push-type": "background",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{ContentAvailable: true},
			},
		},
	}
}
