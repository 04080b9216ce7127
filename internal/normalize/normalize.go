// Package normalize содержит общие правила приведения полей инцидента,
// которые используют и сервер, и консольный клиент.
package normalize

import (
	"strings"
	"time"
)

// FirstNonEmpty возвращает первую строку, не состоящую из пробелов
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DisplayID - идентификатор для показа: бизнес-идентификатор, затем поле id, затем первичный ключ
func DisplayID(primaryKey, id, businessID string) string {
	return FirstNonEmpty(businessID, id, primaryKey)
}

// CanonicalID - идентификатор для адреса страницы: первичный ключ, затем поле id, затем бизнес-идентификатор
func CanonicalID(primaryKey, id, businessID string) string {
	return FirstNonEmpty(primaryKey, id, businessID)
}

// Date выбирает явную дату, иначе время создания. Нулевые значения считаются отсутствующими.
func Date(date, createdAt *time.Time) *time.Time {
	if date != nil && !date.IsZero() {
		return date
	}
	if createdAt != nil && !createdAt.IsZero() {
		return createdAt
	}
	return nil
}

// FormatDate сериализует дату в RFC 3339 (UTC), nil - пустая строка
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Phone возвращает номер телефона и признак его наличия.
// Значения "nil" и "nill" в любом регистре и с пробелами по краям означают отсутствие номера.
func Phone(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "", "nil", "nill":
		return "", false
	}
	return trimmed, true
}
