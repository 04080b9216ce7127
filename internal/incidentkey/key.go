// Package incidentkey описывает неоднозначный идентификатор инцидента.
//
// Запись может быть адресована первичным ключом хранилища, его строковым
// зеркалом, бизнес-идентификатором (incidentId) или устаревшим полем id.
// Key.Resolve строит набор OR-условий, по которому хранилище ищет запись.
// Уникальность не гарантируется: если разные записи подходят под разные
// условия, побеждает первое совпадение хранилища.
package incidentkey

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/railguard/internal/models"
)

// Field - имя поля, по которому сравнивается кандидат
type Field string

const (
	FieldPrimaryKey Field = "_id"
	FieldBusinessID Field = "incidentId"
	FieldID         Field = "id"
)

// ErrEmptyKey возвращается, если кандидат пустой
var ErrEmptyKey = errors.New("incident key is empty")

// PrimaryKeyCodec сообщает, похож ли кандидат на первичный ключ конкретного хранилища
type PrimaryKeyCodec interface {
	Valid(candidate string) bool
}

// UUIDCodec - первичные ключи Postgres
type UUIDCodec struct{}

// Valid проверяет, что строка разбирается как UUID
func (UUIDCodec) Valid(candidate string) bool {
	_, err := uuid.Parse(candidate)
	return err == nil
}

// Clause - одно условие равенства из OR-запроса.
// Native означает сравнение с первичным ключом в его собственном представлении.
type Clause struct {
	Field  Field  `json:"field"`
	Value  string `json:"value"`
	Native bool   `json:"native,omitempty"`
}

// Matches проверяет условие на уже загруженной записи
func (c Clause) Matches(inc *models.Incident) bool {
	if inc == nil {
		return false
	}
	switch c.Field {
	case FieldPrimaryKey:
		if c.Native {
			return strings.EqualFold(inc.ID, c.Value)
		}
		return inc.ID == c.Value
	case FieldBusinessID:
		return inc.IncidentID == c.Value
	case FieldID:
		return inc.ExternalID == c.Value
	}
	return false
}

// MatchesAny - true, если запись подходит хотя бы под одно условие
func MatchesAny(clauses []Clause, inc *models.Incident) bool {
	for _, c := range clauses {
		if c.Matches(inc) {
			return true
		}
	}
	return false
}

// Key - кандидат в идентификаторы неизвестного происхождения
type Key struct {
	candidate string
}

// New создает ключ. Пустой кандидат (в том числе из одних пробелов) - ошибка.
func New(candidate string) (Key, error) {
	if strings.TrimSpace(candidate) == "" {
		return Key{}, ErrEmptyKey
	}
	return Key{candidate: candidate}, nil
}

// FirstOf возвращает ключ из первого непустого кандидата
func FirstOf(candidates ...string) (Key, error) {
	for _, c := range candidates {
		if k, err := New(c); err == nil {
			return k, nil
		}
	}
	return Key{}, ErrEmptyKey
}

func (k Key) String() string {
	return k.candidate
}

// Resolve строит OR-условия в фиксированном порядке:
// нативный первичный ключ (если кандидат на него похож), строковый первичный ключ,
// бизнес-идентификатор, поле id.
func (k Key) Resolve(codec PrimaryKeyCodec) []Clause {
	clauses := make([]Clause, 0, 4)
	if codec != nil && codec.Valid(k.candidate) {
		clauses = append(clauses, Clause{Field: FieldPrimaryKey, Value: k.candidate, Native: true})
	}
	clauses = append(clauses,
		Clause{Field: FieldPrimaryKey, Value: k.candidate},
		Clause{Field: FieldBusinessID, Value: k.candidate},
		Clause{Field: FieldID, Value: k.candidate},
	)
	return clauses
}
