package resolver

import (
	"time"

	"github.com/shenikar/railguard/internal/client"
	"github.com/shenikar/railguard/internal/normalize"
)

// View - нормализованный инцидент для показа оператору
type View struct {
	// CanonicalID - адрес страницы инцидента: первичный ключ, затем id, затем incidentId
	CanonicalID string
	// DisplayID - что показывать в заголовке: incidentId, затем id, затем первичный ключ
	DisplayID string
	Phone     string
	HasPhone  bool
	Date      *time.Time
	Document  client.Document
}

func NewView(doc client.Document) View {
	phone, ok := normalize.Phone(doc.PhoneNumber)
	return View{
		CanonicalID: normalize.CanonicalID(doc.PrimaryKey, doc.SecondaryID(), doc.IncidentID),
		DisplayID:   normalize.DisplayID(doc.PrimaryKey, doc.SecondaryID(), doc.IncidentID),
		Phone:       phone,
		HasPhone:    ok,
		Date:        normalize.Date(parseTime(doc.Date), parseTime(doc.CreatedAt)),
		Document:    doc,
	}
}

// PhoneLabel - номер телефона или прочерк
func (v View) PhoneLabel() string {
	if !v.HasPhone {
		return "-"
	}
	return v.Phone
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &t
}
