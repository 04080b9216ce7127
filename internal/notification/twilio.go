package notification

import (
	"context"
	"fmt"

	"github.com/shenikar/railguard/internal/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender отправляет сообщения WhatsApp через Twilio
type TwilioSender struct {
	client *twilio.RestClient
	from   string
	to     string
}

func NewTwilioSender(cfg *config.Config) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioSender{
		client: client,
		from:   whatsAppAddress(cfg.TwilioWhatsAppNum),
		to:     whatsAppAddress(cfg.ToWhatsAppNumber),
	}
}

// SendWhatsApp отправляет сообщение; mediaURL добавляется вложением, если задан.
// Возвращает SID сообщения.
func (s *TwilioSender) SendWhatsApp(_ context.Context, body, mediaURL string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(s.to)
	params.SetBody(body)
	if mediaURL != "" {
		params.SetMediaUrl([]string{mediaURL})
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio: failed to create message: %w", err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
