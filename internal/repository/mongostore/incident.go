// Package mongostore хранит инциденты в MongoDB. Коллекция может содержать старые документы
// со строковым _id и полем id, поэтому поиск идет по всем вариантам идентификатора.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/service"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	incidentsCollection   = "incidents"
	transitionsCollection = "incident_transitions"
	countersCollection    = "counters"
	businessSequenceName  = "incident_business_seq"
)

// ObjectIDCodec - первичные ключи Mongo это 24-символьные hex ObjectID
type ObjectIDCodec struct{}

func (ObjectIDCodec) Valid(candidate string) bool {
	return primitive.IsValidObjectID(candidate)
}

type incidentDocument struct {
	ID          any        `bson:"_id,omitempty"`
	ExternalID  string     `bson:"id,omitempty"`
	IncidentID  string     `bson:"incidentId,omitempty"`
	IssueType   string     `bson:"issue_type"`
	PhoneNumber string     `bson:"phone_number"`
	Station     string     `bson:"station"`
	Status      string     `bson:"status"`
	Officer     string     `bson:"officer,omitempty"`
	ActionTime  string     `bson:"action_time,omitempty"`
	AudioURL    string     `bson:"audio_url,omitempty"`
	Date        *time.Time `bson:"date,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

type transitionDocument struct {
	IncidentID string    `bson:"incident_id"`
	FromStatus string    `bson:"from_status"`
	ToStatus   string    `bson:"to_status"`
	ChangedAt  time.Time `bson:"changed_at"`
}

// transitionWriter - запись в журнал статусов, *mongo.Collection
type transitionWriter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

type IncidentRepository struct {
	incidents   *mongo.Collection
	transitions *mongo.Collection
	journal     transitionWriter
	counters    *mongo.Collection
	logger      *logrus.Logger
}

func NewIncidentRepository(db *mongo.Database, logger *logrus.Logger) service.IncidentRepository {
	transitions := db.Collection(transitionsCollection)
	return &IncidentRepository{
		incidents:   db.Collection(incidentsCollection),
		transitions: transitions,
		journal:     transitions,
		counters:    db.Collection(countersCollection),
		logger:      logger,
	}
}

func (r *IncidentRepository) PrimaryKeyCodec() incidentkey.PrimaryKeyCodec {
	return ObjectIDCodec{}
}

func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	seq, err := r.nextSequence(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	oid := primitive.NewObjectID()
	doc := incidentDocument{
		ID:          oid,
		IncidentID:  fmt.Sprintf("RPF-%d-%04d", now.Year(), seq),
		IssueType:   incident.IssueType,
		PhoneNumber: incident.PhoneNumber,
		Station:     incident.Station,
		Status:      string(incident.Status),
		AudioURL:    incident.AudioURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.incidents.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	incident.ID = oid.Hex()
	incident.IncidentID = doc.IncidentID
	incident.CreatedAt = now
	incident.UpdatedAt = now
	return nil
}

func (r *IncidentRepository) FindOne(ctx context.Context, clauses []incidentkey.Clause) (*models.Incident, error) {
	filter, err := buildFilter(clauses)
	if err != nil {
		return nil, err
	}

	var doc incidentDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := r.incidents.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, service.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to find incident: %w", err)
	}
	return doc.toModel(), nil
}

func (r *IncidentRepository) List(ctx context.Context) ([]*models.Incident, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *IncidentRepository) ListOpenCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Incident, error) {
	filter := bson.M{
		"status":    string(models.StatusOpen),
		"createdAt": bson.M{"$gt": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(ctx, filter, opts)
}

// UpdateStatus меняет статус самого старого подходящего документа.
// Переход пишется отдельной вставкой: standalone MongoDB не поддерживает транзакции.
// Статус к этому моменту уже записан, поэтому ошибка журнала не возвращается вызывающему.
func (r *IncidentRepository) UpdateStatus(ctx context.Context, clauses []incidentkey.Clause, status models.Status) (*models.Incident, error) {
	filter, err := buildFilter(clauses)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": now}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.Before)

	var before incidentDocument
	if err := r.incidents.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, service.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to update incident status: %w", err)
	}

	incident := before.toModel()
	r.recordTransition(ctx, incident.ID, incident.Status, status, now)

	incident.Status = status
	incident.UpdatedAt = now
	return incident, nil
}

func (r *IncidentRepository) recordTransition(ctx context.Context, incidentID string, from, to models.Status, at time.Time) {
	transition := transitionDocument{
		IncidentID: incidentID,
		FromStatus: string(from),
		ToStatus:   string(to),
		ChangedAt:  at,
	}
	if _, err := r.journal.InsertOne(ctx, transition); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"repository":  "mongo",
			"incident_id": incidentID,
			"to_status":   to,
		}).Error("Status updated but transition was not recorded")
	}
}

func (r *IncidentRepository) UpdateStaffAndTime(ctx context.Context, clauses []incidentkey.Clause, officer, actionTime string) (*models.Incident, error) {
	filter, err := buildFilter(clauses)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"officer": officer, "action_time": actionTime, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)

	var doc incidentDocument
	if err := r.incidents.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, service.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to update staff and time: %w", err)
	}
	return doc.toModel(), nil
}

func (r *IncidentRepository) ListTransitions(ctx context.Context, incidentID string) ([]*models.StatusTransition, error) {
	opts := options.Find().SetSort(bson.D{{Key: "changed_at", Value: 1}})
	cursor, err := r.transitions.Find(ctx, bson.M{"incident_id": incidentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list status transitions: %w", err)
	}

	var docs []transitionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode status transitions: %w", err)
	}

	transitions := make([]*models.StatusTransition, len(docs))
	for i, d := range docs {
		transitions[i] = &models.StatusTransition{
			ID:         int64(i + 1),
			IncidentID: d.IncidentID,
			FromStatus: models.Status(d.FromStatus),
			ToStatus:   models.Status(d.ToStatus),
			ChangedAt:  d.ChangedAt,
		}
	}
	return transitions, nil
}

func (r *IncidentRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]*models.Incident, error) {
	cursor, err := r.incidents.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}

	var docs []incidentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode incidents: %w", err)
	}

	incidents := make([]*models.Incident, len(docs))
	for i := range docs {
		incidents[i] = docs[i].toModel()
	}
	return incidents, nil
}

func (r *IncidentRepository) nextSequence(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": businessSequenceName},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate incident number: %w", err)
	}
	return counter.Seq, nil
}

// buildFilter собирает $or из условий поиска
func buildFilter(clauses []incidentkey.Clause) (bson.M, error) {
	if len(clauses) == 0 {
		return nil, fmt.Errorf("no identifier clauses to match")
	}
	or := make(bson.A, 0, len(clauses))
	for _, c := range clauses {
		switch {
		case c.Field == incidentkey.FieldPrimaryKey && c.Native:
			oid, err := primitive.ObjectIDFromHex(c.Value)
			if err != nil {
				return nil, fmt.Errorf("native primary key clause with invalid ObjectID %q: %w", c.Value, err)
			}
			or = append(or, bson.M{"_id": oid})
		case c.Field == incidentkey.FieldPrimaryKey:
			or = append(or, bson.M{"_id": c.Value})
		case c.Field == incidentkey.FieldBusinessID:
			or = append(or, bson.M{"incidentId": c.Value})
		case c.Field == incidentkey.FieldID:
			or = append(or, bson.M{"id": c.Value})
		default:
			return nil, fmt.Errorf("unknown identifier field %q", c.Field)
		}
	}
	return bson.M{"$or": or}, nil
}

func (d *incidentDocument) toModel() *models.Incident {
	return &models.Incident{
		ID:          primaryKeyString(d.ID),
		ExternalID:  d.ExternalID,
		IncidentID:  d.IncidentID,
		IssueType:   d.IssueType,
		PhoneNumber: d.PhoneNumber,
		Station:     d.Station,
		Status:      models.Status(d.Status),
		Officer:     d.Officer,
		ActionTime:  d.ActionTime,
		AudioURL:    d.AudioURL,
		Date:        d.Date,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// primaryKeyString приводит _id любого из встречающихся типов к строке
func primaryKeyString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
