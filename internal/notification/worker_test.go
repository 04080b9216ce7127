package notification_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/railguard/internal/config"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/notification"
	"github.com/shenikar/railguard/internal/notification/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newTestConfig() *config.Config {
	return &config.Config{
		WebhookTimeout:   time.Second,
		NotifyMaxRetries: 3,
		NotifyBaseDelay:  time.Millisecond,
	}
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func sampleJob() notification.Job {
	return notification.Job{
		Kind:        notification.KindSOS,
		IncidentID:  "9b2f3c1e-8d4a-4e55-9a43-1f2e3d4c5b6a",
		BusinessID:  "RPF-2026-0007",
		IssueType:   "Theft",
		PhoneNumber: "+919876543210",
		Station:     "Dadar",
	}
}

func TestWorker_Process_AllChannels(t *testing.T) {
	ctrl := gomock.NewController(t)
	whatsapp := mocks.NewMockWhatsAppSender(ctrl)
	push := mocks.NewMockPushSender(ctrl)
	devices := mocks.NewMockDeviceLookup(ctrl)

	job := sampleJob()
	job.AudioURL = "https://cdn.example.com/audio_recordings/recording-1.webm"

	gomock.InOrder(
		whatsapp.EXPECT().SendWhatsApp(gomock.Any(), notification.FormatMessage(job), "").Return("SM1", nil),
		whatsapp.EXPECT().SendWhatsApp(gomock.Any(), gomock.Any(), job.AudioURL).Return("SM2", nil),
	)
	devices.EXPECT().LatestDevice(gomock.Any()).Return(&models.Device{DeviceToken: "token-1"}, nil)
	push.EXPECT().SendPush(gomock.Any(), "token-1", notification.PushTitle, "Theft reported at Dadar").Return("msg-1", nil)

	w := notification.NewWorker(nil, newTestLogger(), newTestConfig(), devices, whatsapp, push)
	w.Process(context.Background(), job)
}

func TestWorker_Process_RetriesThenGivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	whatsapp := mocks.NewMockWhatsAppSender(ctrl)

	whatsapp.EXPECT().SendWhatsApp(gomock.Any(), gomock.Any(), "").Return("", errors.New("twilio down")).Times(3)

	w := notification.NewWorker(nil, newTestLogger(), newTestConfig(), nil, whatsapp, nil)
	w.Process(context.Background(), sampleJob())
}

func TestWorker_Process_ChannelFailureDoesNotBlockOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	whatsapp := mocks.NewMockWhatsAppSender(ctrl)
	push := mocks.NewMockPushSender(ctrl)
	devices := mocks.NewMockDeviceLookup(ctrl)

	cfg := newTestConfig()
	cfg.NotifyMaxRetries = 1

	whatsapp.EXPECT().SendWhatsApp(gomock.Any(), gomock.Any(), "").Return("", errors.New("boom"))
	devices.EXPECT().LatestDevice(gomock.Any()).Return(&models.Device{DeviceToken: "token-1"}, nil)
	push.EXPECT().SendPush(gomock.Any(), "token-1", gomock.Any(), gomock.Any()).Return("msg-1", nil)

	w := notification.NewWorker(nil, newTestLogger(), cfg, devices, whatsapp, push)
	w.Process(context.Background(), sampleJob())
}

func TestWorker_Process_NoDeviceSkipsPush(t *testing.T) {
	ctrl := gomock.NewController(t)
	push := mocks.NewMockPushSender(ctrl)
	devices := mocks.NewMockDeviceLookup(ctrl)

	devices.EXPECT().LatestDevice(gomock.Any()).Return(nil, nil)

	w := notification.NewWorker(nil, newTestLogger(), newTestConfig(), devices, nil, push)
	w.Process(context.Background(), sampleJob())
}

func TestWorker_Process_SignedWebhook(t *testing.T) {
	var calls atomic.Int32
	var gotBody []byte
	var gotSignature string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get("X-Webhook-Signature")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := newTestConfig()
	cfg.WebhookURL = srv.URL
	cfg.WebhookSecret = "s3cret"

	w := notification.NewWorker(nil, newTestLogger(), cfg, nil, nil, nil)
	w.Process(context.Background(), sampleJob())

	assert.Equal(t, int32(2), calls.Load())
	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
	assert.Contains(t, string(gotBody), `"business_id":"RPF-2026-0007"`)
}
