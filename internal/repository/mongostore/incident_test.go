package mongostore

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestObjectIDCodec(t *testing.T) {
	codec := ObjectIDCodec{}
	assert.True(t, codec.Valid("65f1a2b3c4d5e6f708192a3b"))
	assert.False(t, codec.Valid("RPF-2026-0001"))
	assert.False(t, codec.Valid("9b2f3c1e-8d4a-4e55-9a43-1f2e3d4c5b6a"))
}

func TestBuildFilter_ObjectIDCandidate(t *testing.T) {
	hex := "65f1a2b3c4d5e6f708192a3b"
	key, err := incidentkey.New(hex)
	require.NoError(t, err)

	filter, err := buildFilter(key.Resolve(ObjectIDCodec{}))
	require.NoError(t, err)

	oid, _ := primitive.ObjectIDFromHex(hex)
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"_id": oid},
		bson.M{"_id": hex},
		bson.M{"incidentId": hex},
		bson.M{"id": hex},
	}}, filter)
}

func TestBuildFilter_BusinessCandidate(t *testing.T) {
	key, err := incidentkey.New("RPF-2026-0001")
	require.NoError(t, err)

	filter, err := buildFilter(key.Resolve(ObjectIDCodec{}))
	require.NoError(t, err)
	assert.Len(t, filter["$or"], 3)
}

func TestBuildFilter_Errors(t *testing.T) {
	_, err := buildFilter(nil)
	assert.Error(t, err)

	_, err = buildFilter([]incidentkey.Clause{{Field: incidentkey.FieldPrimaryKey, Value: "zz", Native: true}})
	assert.Error(t, err)
}

func TestDocumentToModel_MixedPrimaryKeys(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	fromObjectID := (&incidentDocument{ID: oid, IncidentID: "RPF-2026-0001", Status: "OPEN", CreatedAt: created}).toModel()
	assert.Equal(t, oid.Hex(), fromObjectID.ID)
	assert.Equal(t, models.StatusOpen, fromObjectID.Status)
	assert.Equal(t, created, fromObjectID.CreatedAt)

	legacy := (&incidentDocument{ID: "legacy-42", ExternalID: "42"}).toModel()
	assert.Equal(t, "legacy-42", legacy.ID)
	assert.Equal(t, "42", legacy.ExternalID)

	assert.Equal(t, "", primaryKeyString(nil))
	assert.Equal(t, "7", primaryKeyString(int32(7)))
}

func TestDocumentDecode_StringPrimaryKey(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"_id": "legacy-1", "status": "CLOSED"})
	require.NoError(t, err)

	var doc incidentDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "legacy-1", doc.toModel().ID)
}

type stubJournal struct {
	err  error
	docs []interface{}
}

func (j *stubJournal) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if j.err != nil {
		return nil, j.err
	}
	j.docs = append(j.docs, document)
	return &mongo.InsertOneResult{}, nil
}

func TestRecordTransition_WritesJournalEntry(t *testing.T) {
	journal := &stubJournal{}
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	repo := &IncidentRepository{journal: journal, logger: logger}

	at := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	repo.recordTransition(context.Background(), "65f1a2b3c4d5e6f708192a3b", models.StatusOpen, models.StatusResolved, at)

	require.Len(t, journal.docs, 1)
	assert.Equal(t, transitionDocument{
		IncidentID: "65f1a2b3c4d5e6f708192a3b",
		FromStatus: "OPEN",
		ToStatus:   "RESOLVED",
		ChangedAt:  at,
	}, journal.docs[0])
}

func TestRecordTransition_FailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	repo := &IncidentRepository{journal: &stubJournal{err: errors.New("write concern timeout")}, logger: logger}

	assert.NotPanics(t, func() {
		repo.recordTransition(context.Background(), "legacy-1", models.StatusOpen, models.StatusClosed, time.Now())
	})
	assert.Contains(t, buf.String(), "transition was not recorded")
	assert.Contains(t, buf.String(), "write concern timeout")
}
