package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/railguard/internal/config"
	"github.com/shenikar/railguard/internal/models"
	"github.com/sirupsen/logrus"
)

// WhatsAppSender - канал доставки сообщений дежурному
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, body, mediaURL string) (string, error)
}

// PushSender - канал доставки push-уведомлений
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string) (string, error)
}

// DeviceLookup возвращает последнее зарегистрированное устройство или nil
type DeviceLookup interface {
	LatestDevice(ctx context.Context) (*models.Device, error)
}

// Worker забирает задания из очереди и рассылает уведомления по всем настроенным каналам.
// Ошибка одного канала не мешает остальным.
type Worker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
	devices     DeviceLookup
	whatsapp    WhatsAppSender
	push        PushSender
}

// NewWorker создает Worker. whatsapp и push могут быть nil, если канал не настроен.
func NewWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config, devices DeviceLookup, whatsapp WhatsAppSender, push PushSender) *Worker {
	return &Worker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
		devices:  devices,
		whatsapp: whatsapp,
		push:     push,
	}
}

// Run обрабатывает очередь до отмены ctx
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Starting notification worker...")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping notification worker.")
			return nil
		default:
		}

		// BRPOP с таймаутом, чтобы периодически проверять ctx
		result, err := w.redisClient.BRPop(ctx, 5*time.Second, jobQueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.WithError(err).Error("Failed to pop notification job from Redis")
			select {
			case <-ctx.Done():
			case <-time.After(w.cfg.WebhookTimeout):
			}
			continue
		}

		// result[0] - ключ, result[1] - значение
		payload := result[1]
		var job Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			w.logger.WithError(err).Error("Failed to unmarshal notification job from Redis")
			continue
		}

		w.Process(ctx, job)
	}
}

// Process доставляет одно задание: WhatsApp текст, WhatsApp с аудио, push, вебхук
func (w *Worker) Process(ctx context.Context, job Job) {
	log := w.logger.WithFields(logrus.Fields{
		"component":   "notification",
		"kind":        job.Kind,
		"incident_id": job.IncidentID,
	})
	log.Debug("Processing notification job...")

	w.sendWhatsApp(ctx, log, job)
	w.sendPush(ctx, log, job)
	w.sendWebhook(ctx, log, job)
}

func (w *Worker) sendWhatsApp(ctx context.Context, log *logrus.Entry, job Job) {
	if w.whatsapp == nil {
		log.Debug("WhatsApp is not configured. Skipping.")
		return
	}

	body := FormatMessage(job)
	err := w.retry(ctx, log, "whatsapp", func() error {
		sid, err := w.whatsapp.SendWhatsApp(ctx, body, "")
		if err == nil {
			log.WithField("sid", sid).Info("WhatsApp message sent")
		}
		return err
	})
	if err != nil {
		log.WithError(err).Error("Failed to send WhatsApp message")
	}

	if job.AudioURL == "" {
		return
	}
	err = w.retry(ctx, log, "whatsapp_media", func() error {
		sid, err := w.whatsapp.SendWhatsApp(ctx, "Voice recording attached for this incident.", job.AudioURL)
		if err == nil {
			log.WithField("sid", sid).Info("WhatsApp media message sent")
		}
		return err
	})
	if err != nil {
		log.WithError(err).Error("Failed to send WhatsApp media message")
	}
}

func (w *Worker) sendPush(ctx context.Context, log *logrus.Entry, job Job) {
	if w.push == nil || w.devices == nil {
		log.Debug("Push is not configured. Skipping.")
		return
	}

	device, err := w.devices.LatestDevice(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to look up device for push")
		return
	}
	if device == nil {
		log.Warn("No registered device. Skipping push.")
		return
	}

	body := FormatPushBody(job)
	err = w.retry(ctx, log, "push", func() error {
		id, err := w.push.SendPush(ctx, device.DeviceToken, PushTitle, body)
		if err == nil {
			log.WithField("message_id", id).Info("Push notification sent")
		}
		return err
	})
	if err != nil {
		log.WithError(err).Error("Failed to send push notification")
	}
}

func (w *Worker) sendWebhook(ctx context.Context, log *logrus.Entry, job Job) {
	if w.cfg.WebhookURL == "" {
		log.Debug("Webhook URL is not configured. Skipping webhook delivery.")
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		log.WithError(err).Error("Failed to marshal webhook payload")
		return
	}

	err = w.retry(ctx, log, "webhook", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		// Добавляем HMAC подпись, если WEBHOOK_SECRET задан
		if w.cfg.WebhookSecret != "" {
			req.Header.Set("X-Webhook-Signature", generateHMACSHA256(payload, w.cfg.WebhookSecret))
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("webhook delivery failed with status code %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to deliver webhook")
		return
	}
	log.Info("Webhook delivered successfully.")
}

// retry повторяет op с экспоненциальной задержкой, всего не больше NotifyMaxRetries попыток
func (w *Worker) retry(ctx context.Context, log *logrus.Entry, channel string, op func() error) error {
	attempts := w.cfg.NotifyMaxRetries
	if attempts < 1 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = w.cfg.NotifyBaseDelay
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)
	return backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
		log.WithError(err).WithField("channel", channel).Warnf("Delivery failed. Retrying in %v", next)
	})
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
