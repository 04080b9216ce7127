package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shenikar/railguard/internal/events"
	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPK       = "9b2f3c1e-8d4a-4e55-9a43-1f2e3d4c5b6a"
	testBusiness = "RPF-2026-0001"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetIncident(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/incident/"+testBusiness, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		writeJSON(w, http.StatusOK, map[string]any{
			"incident": map[string]any{"_id": testPK, "id": testBusiness, "incidentId": testBusiness, "status": "OPEN"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("secret"))
	doc, err := c.GetIncident(context.Background(), testBusiness)

	require.NoError(t, err)
	assert.Equal(t, testPK, doc.PrimaryKey)
	assert.True(t, doc.Matches(testBusiness))
	assert.True(t, doc.Matches(testPK))
	assert.False(t, doc.Matches("RPF-2026-0002"))
}

func TestDocument_MatchesLegacyID(t *testing.T) {
	doc := &Document{PrimaryKey: testPK, ID: testBusiness, ExternalID: "legacy-7", IncidentID: testBusiness}

	assert.True(t, doc.Matches("legacy-7"))
	assert.Equal(t, "legacy-7", doc.SecondaryID())

	withoutLegacy := &Document{ID: "legacy-9"}
	assert.Equal(t, "legacy-9", withoutLegacy.SecondaryID())
	assert.False(t, withoutLegacy.Matches(""))
}

func TestGetIncident_NotFoundCarriesTriedClauses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message": "Incident not found for given id",
			"tried": []incidentkey.Clause{
				{Field: incidentkey.FieldPrimaryKey, Value: "nope"},
				{Field: incidentkey.FieldBusinessID, Value: "nope"},
			},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetIncident(context.Background(), "nope")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Incident not found for given id", apiErr.Message)
	assert.Len(t, apiErr.Tried, 2)
}

func TestGetIncident_EmptyDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"incident": nil})
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetIncident(context.Background(), testPK)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Server error", "error": "db down"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListIncidents(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "500")
}

func TestUpdateStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/incident/"+testPK+"/status", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"status":"RESOLVED"}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{
			"message":  "Status updated",
			"incident": map[string]any{"_id": testPK, "status": "RESOLVED"},
		})
	}))
	defer srv.Close()

	doc, err := New(srv.URL).UpdateStatus(context.Background(), testPK, "RESOLVED")

	require.NoError(t, err)
	assert.Equal(t, "RESOLVED", doc.Status)
}

func TestUpdateStaffAndTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/incident/"+testPK+"/staff-and-time", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"dutyStaff":"SI Patil","action_time":"10:15","incidentId":"`+testPK+`"}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{"incident": map[string]any{"_id": testPK, "officer": "SI Patil"}})
	}))
	defer srv.Close()

	doc, err := New(srv.URL).UpdateStaffAndTime(context.Background(), testPK, "SI Patil", "10:15")

	require.NoError(t, err)
	assert.Equal(t, "SI Patil", doc.Officer)
}

func TestListAndTimeline(t *testing.T) {
	changed := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/incident-list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"incidents": []map[string]any{{"_id": testPK}, {"_id": "other"}},
		})
	})
	mux.HandleFunc("/api/incident/"+testPK+"/timeline", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"incident":    testPK,
			"transitions": []map[string]any{{"from_status": "OPEN", "to_status": "CLOSED", "changed_at": changed}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL)

	docs, err := c.ListIncidents(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	transitions, err := c.Timeline(context.Background(), testPK)
	require.NoError(t, err)
	require.Len(t, transitions, 1)
	assert.Equal(t, models.StatusClosed, transitions[0].ToStatus)
	assert.True(t, changed.Equal(transitions[0].ChangedAt))
}

func TestStreamUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "event:incident:updated\ndata:{\"id\":\""+testPK+"\",\"status\":\"RESOLVED\"}\n\n")
		fmt.Fprint(w, "event:other\ndata:{\"id\":\"ignored\"}\n\n")
		fmt.Fprint(w, "event:incident:updated\ndata:{\"status\":\"OPEN\"}\n\n")
		fmt.Fprint(w, "event: incident:updated\ndata: {\"id\":\""+testBusiness+"\"}\n\n")
	}))
	defer srv.Close()

	updates, errs := New(srv.URL).StreamUpdates(context.Background())

	var got []events.IncidentUpdated
	for u := range updates {
		got = append(got, u)
	}
	for err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, got, 2)
	assert.Equal(t, events.IncidentUpdated{ID: testPK, Status: models.StatusResolved}, got[0])
	assert.Equal(t, testBusiness, got[1].ID)
}

func TestStreamUpdates_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "API key is missing"})
	}))
	defer srv.Close()

	updates, errs := New(srv.URL).StreamUpdates(context.Background())
	for range updates {
	}

	err := <-errs
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
