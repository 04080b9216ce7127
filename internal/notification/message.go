package notification

import (
	"fmt"
	"strings"
)

// PushTitle - заголовок push-уведомления о новом обращении
const PushTitle = "🚨 New Incident Reported!"

// FormatMessage - текст WhatsApp-сообщения для дежурного
func FormatMessage(job Job) string {
	var b strings.Builder
	switch job.Kind {
	case KindSLABreach:
		b.WriteString("Incident Still Open (SLA breached):\n")
	default:
		b.WriteString("New Incident Report Submitted:\n")
	}
	if job.BusinessID != "" {
		fmt.Fprintf(&b, "Incident: %s\n", job.BusinessID)
	}
	fmt.Fprintf(&b, "Issue: %s\n", job.IssueType)
	fmt.Fprintf(&b, "Call now: %s\n", job.PhoneNumber)
	fmt.Fprintf(&b, "Location/Station: %s\n", job.Station)
	b.WriteString("Please take immediate action.")
	return b.String()
}

// FormatPushBody - короткий текст push-уведомления
func FormatPushBody(job Job) string {
	if job.Kind == KindSLABreach {
		return fmt.Sprintf("%s at %s is still open", job.IssueType, job.Station)
	}
	return fmt.Sprintf("%s reported at %s", job.IssueType, job.Station)
}

// whatsAppAddress добавляет префикс whatsapp: если его нет
func whatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
