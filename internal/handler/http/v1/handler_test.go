package v1

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/railguard/internal/config"
	"github.com/shenikar/railguard/internal/events"
	events_mocks "github.com/shenikar/railguard/internal/events/mocks"
	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/service"
	"github.com/shenikar/railguard/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testPK       = "9b2f3c1e-8d4a-4e55-9a43-1f2e3d4c5b6a"
	testBusiness = "RPF-2026-0001"
)

type testMocks struct {
	incidents *mocks.MockIncidentService
	devices   *mocks.MockDeviceService
	officers  *mocks.MockOfficerService
	updates   *events_mocks.MockSubscriber
}

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T, apiKeys ...string) (*Handler, testMocks, *gin.Engine) {
	ctrl := gomock.NewController(t)
	m := testMocks{
		incidents: mocks.NewMockIncidentService(ctrl),
		devices:   mocks.NewMockDeviceService(ctrl),
		officers:  mocks.NewMockOfficerService(ctrl),
		updates:   events_mocks.NewMockSubscriber(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys:         apiKeys,
		CORSAllowOrigin: "*",
	}

	handler := NewHandler(m.incidents, m.devices, m.officers, m.updates, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	handler.RegisterRoutes(api)

	return handler, m, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func sampleIncident(status models.Status) *models.Incident {
	created := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	return &models.Incident{
		ID:          testPK,
		IncidentID:  testBusiness,
		IssueType:   "Theft",
		PhoneNumber: "nill",
		Station:     "Dadar",
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestUpdateStatus_Success(t *testing.T) {
	_, m, router := newTestHandler(t)

	m.incidents.EXPECT().
		UpdateStatus(gomock.Any(), "resolved", testBusiness, "", "").
		Return(sampleIncident(models.StatusResolved), nil)

	w := makeRequest(router, http.MethodPatch, "/api/incident/"+testBusiness+"/status", strings.NewReader(`{"status":"resolved"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Status updated", body["message"])
	incident := body["incident"].(map[string]any)
	assert.Equal(t, testPK, incident["_id"])
	assert.Equal(t, testBusiness, incident["id"])
	assert.Equal(t, "RESOLVED", incident["status"])
	assert.Equal(t, "2026-10-19T08:30:00Z", incident["date"])
}

func TestUpdateStatus_PassesBodyIdentifiersInOrder(t *testing.T) {
	_, m, router := newTestHandler(t)

	m.incidents.EXPECT().
		UpdateStatus(gomock.Any(), "CLOSED", testPK, "42", testBusiness).
		Return(sampleIncident(models.StatusClosed), nil)

	w := makeRequest(router, http.MethodPatch, "/api/incident/"+testPK+"/status",
		strings.NewReader(`{"status":"CLOSED","id":42,"incidentId":"`+testBusiness+`"}`))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateStatus_NonStringOrMalformedStatus(t *testing.T) {
	bodies := []string{`{"status":5}`, `{"status":null}`, `not json`, ``}

	for _, raw := range bodies {
		t.Run(raw, func(t *testing.T) {
			_, m, router := newTestHandler(t)
			m.incidents.EXPECT().
				UpdateStatus(gomock.Any(), "", testPK, "", "").
				Return(nil, service.ErrMissingStatus)

			w := makeRequest(router, http.MethodPatch, "/api/incident/"+testPK+"/status", strings.NewReader(raw))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Missing status in request body", decodeBody(t, w)["message"])
		})
	}
}

func TestUpdateStatus_ErrorMapping(t *testing.T) {
	tried := []incidentkey.Clause{
		{Field: incidentkey.FieldPrimaryKey, Value: "nope"},
		{Field: incidentkey.FieldBusinessID, Value: "nope"},
		{Field: incidentkey.FieldID, Value: "nope"},
	}

	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{name: "invalid status", err: service.ErrInvalidStatus, wantCode: http.StatusBadRequest,
			wantMessage: "Invalid status. Allowed: OPEN, IN-PROGRESS, ASSIGNED, RESOLVED, CLOSED"},
		{name: "no identifier", err: service.ErrMissingIdentifier, wantCode: http.StatusBadRequest,
			wantMessage: "No id provided in route or body"},
		{name: "not found", err: &service.NotFoundError{Candidate: "nope", Tried: tried}, wantCode: http.StatusNotFound,
			wantMessage: "Incident not found for given id"},
		{name: "store failure", err: errors.New("connection refused"), wantCode: http.StatusInternalServerError,
			wantMessage: "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, router := newTestHandler(t)
			m.incidents.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := makeRequest(router, http.MethodPatch, "/api/incident/nope/status", strings.NewReader(`{"status":"DONE"}`))

			assert.Equal(t, tt.wantCode, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantMessage, body["message"])
			switch tt.wantCode {
			case http.StatusNotFound:
				require.Len(t, body["tried"], 3)
				first := body["tried"].([]any)[0].(map[string]any)
				assert.Equal(t, "_id", first["field"])
				assert.Equal(t, "nope", first["value"])
			case http.StatusInternalServerError:
				assert.Equal(t, "connection refused", body["error"])
			}
		})
	}
}

func TestUpdateStaffAndTime(t *testing.T) {
	_, m, router := newTestHandler(t)
	updated := sampleIncident(models.StatusOpen)
	updated.Officer = "SI Patil"

	m.incidents.EXPECT().
		UpdateStaffAndTime(gomock.Any(), "SI Patil", "10:15", testPK, "route-id").
		Return(updated, nil)

	w := makeRequest(router, http.MethodPatch, "/api/incident/route-id/staff-and-time",
		strings.NewReader(`{"dutyStaff":"SI Patil","action_time":"10:15","incidentId":"`+testPK+`"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SI Patil", decodeBody(t, w)["incident"].(map[string]any)["officer"])
}

func TestUpdateStaffAndTime_InvalidJSON(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodPatch, "/api/incident/x/staff-and-time", strings.NewReader(`{`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetIncident(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.incidents.EXPECT().GetIncident(gomock.Any(), testBusiness).Return(sampleIncident(models.StatusOpen), nil)

	w := makeRequest(router, http.MethodGet, "/api/incident/"+testBusiness, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	incident := decodeBody(t, w)["incident"].(map[string]any)
	assert.Equal(t, testPK, incident["_id"])
}

func TestGetIncident_SerializesLegacyID(t *testing.T) {
	_, m, router := newTestHandler(t)
	incident := sampleIncident(models.StatusOpen)
	incident.ExternalID = "legacy-7"
	m.incidents.EXPECT().GetIncident(gomock.Any(), "legacy-7").Return(incident, nil)

	w := makeRequest(router, http.MethodGet, "/api/incident/legacy-7", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)["incident"].(map[string]any)
	assert.Equal(t, testBusiness, body["id"])
	assert.Equal(t, "legacy-7", body["externalId"])
	assert.Equal(t, testBusiness, body["incidentId"])
}

func TestGetIncident_NotFound(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.incidents.EXPECT().
		GetIncident(gomock.Any(), "missing").
		Return(nil, &service.NotFoundError{Candidate: "missing"})

	w := makeRequest(router, http.MethodGet, "/api/incident/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTimeline(t *testing.T) {
	_, m, router := newTestHandler(t)
	transitions := []*models.StatusTransition{
		{ID: 1, IncidentID: testPK, FromStatus: models.StatusOpen, ToStatus: models.StatusInProgress},
	}
	m.incidents.EXPECT().Timeline(gomock.Any(), testBusiness).Return(transitions, nil)

	w := makeRequest(router, http.MethodGet, "/api/incident/"+testBusiness+"/timeline", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp TimelineResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testBusiness, resp.Incident)
	require.Len(t, resp.Transitions, 1)
	assert.Equal(t, models.StatusInProgress, resp.Transitions[0].ToStatus)
}

func TestListIncidents_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.incidents.EXPECT().ListIncidents(gomock.Any()).Return([]*models.Incident{sampleIncident(models.StatusOpen)}, nil)

	w := makeRequest(router, http.MethodGet, "/api/incident-list", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Incidents, 1)
	assert.Equal(t, testBusiness, resp.Incidents[0].ID)
}

func TestListIncidents_ServiceError(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.incidents.EXPECT().ListIncidents(gomock.Any()).Return(nil, errors.New("db down"))

	w := makeRequest(router, http.MethodGet, "/api/incident-list", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func newMultipart(t *testing.T, fields map[string]string, file string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != "" {
		part, err := mw.CreateFormFile("audio", file)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestReportSOS_WithAudio(t *testing.T) {
	_, m, router := newTestHandler(t)
	body, contentType := newMultipart(t, map[string]string{
		"issue_type":   "Medical",
		"phone_number": "nill",
		"station":      "Thane",
	}, "voice.webm", []byte("OggS"))

	m.incidents.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any(), gomock.Not(gomock.Nil())).
		DoAndReturn(func(_ context.Context, inc *models.Incident, audio *models.AudioUpload) error {
			assert.Equal(t, "Medical", inc.IssueType)
			assert.Equal(t, "Thane", inc.Station)
			assert.Equal(t, "voice.webm", audio.Filename)
			data, err := io.ReadAll(audio.Body)
			require.NoError(t, err)
			assert.Equal(t, "OggS", string(data))

			inc.ID = testPK
			inc.IncidentID = testBusiness
			inc.Status = models.StatusOpen
			return nil
		})

	w := makeRequest(router, http.MethodPost, "/api/sos", body, map[string]string{"Content-Type": contentType})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, testBusiness, resp["incident"].(map[string]any)["id"])
}

func TestReportSOS_ValidationError(t *testing.T) {
	_, _, router := newTestHandler(t)
	body, contentType := newMultipart(t, map[string]string{"issue_type": "Medical"}, "", nil)

	w := makeRequest(router, http.MethodPost, "/api/sos", body, map[string]string{"Content-Type": contentType})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestReportSOS_ServiceError(t *testing.T) {
	_, m, router := newTestHandler(t)
	body, contentType := newMultipart(t, map[string]string{"issue_type": "Theft", "station": "Dadar"}, "", nil)
	m.incidents.EXPECT().ReportIncident(gomock.Any(), gomock.Any(), gomock.Nil()).Return(errors.New("db down"))

	w := makeRequest(router, http.MethodPost, "/api/sos", body, map[string]string{"Content-Type": contentType})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRegisterDevice(t *testing.T) {
	tests := []struct {
		name        string
		created     bool
		err         error
		wantCode    int
		wantMessage string
	}{
		{name: "new", created: true, wantCode: http.StatusOK, wantMessage: "Device registered successfully"},
		{name: "existing", created: false, wantCode: http.StatusOK, wantMessage: "Device already registered"},
		{name: "missing token", err: service.ErrMissingDeviceToken, wantCode: http.StatusBadRequest, wantMessage: "device_token is required"},
		{name: "store failure", err: errors.New("db down"), wantCode: http.StatusInternalServerError, wantMessage: "Failed to register device"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, router := newTestHandler(t)
			var device *models.Device
			if tt.err == nil {
				device = &models.Device{ID: uuid.New(), DeviceToken: "tok"}
			}
			m.devices.EXPECT().Register(gomock.Any(), "tok").Return(device, tt.created, tt.err)

			body, contentType := newMultipart(t, map[string]string{"device_token": "tok"}, "", nil)
			w := makeRequest(router, http.MethodPost, "/api/device", body, map[string]string{"Content-Type": contentType})

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMessage, decodeBody(t, w)["message"])
		})
	}
}

func TestDevicePreflight(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodOptions, "/api/device", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		officer  *models.Officer
		err      error
		wantCode int
	}{
		{name: "success", body: `{"officerId":"RPF-101","phone":"98"}`, officer: &models.Officer{ID: uuid.New(), OfficerID: "RPF-101", IsActive: true}, wantCode: http.StatusOK},
		{name: "rejected", body: `{"officerId":"RPF-101","phone":"00"}`, err: service.ErrInvalidCredentials, wantCode: http.StatusUnauthorized},
		{name: "missing", body: `{"officerId":"RPF-101"}`, err: service.ErrMissingCredentials, wantCode: http.StatusBadRequest},
		{name: "store failure", body: `{"officerId":"RPF-101","phone":"98"}`, err: errors.New("db down"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, router := newTestHandler(t)
			m.officers.EXPECT().Login(gomock.Any(), "RPF-101", gomock.Any()).Return(tt.officer, tt.err)

			w := makeRequest(router, http.MethodPost, "/api/login", strings.NewReader(tt.body))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				user := decodeBody(t, w)["user"].(map[string]any)
				assert.Equal(t, "RPF-101", user["officerId"])
				assert.NotContains(t, user, "phone_number")
			}
		})
	}
}

func TestCreateOfficer(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.officers.EXPECT().
		CreateOfficer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o *models.Officer) error {
			assert.True(t, o.IsActive)
			assert.Equal(t, "officer", o.Role)
			o.ID = uuid.New()
			return nil
		})

	w := makeRequest(router, http.MethodPost, "/api/officers",
		strings.NewReader(`{"officerId":"RPF-101","name":"A. Rao","phone_number":"98"}`))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateOfficer_ValidationError(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodPost, "/api/officers", strings.NewReader(`{"officerId":"RPF-101"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOfficers(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.officers.EXPECT().ListOfficers(gomock.Any()).Return([]*models.Officer{{ID: uuid.New(), OfficerID: "RPF-101"}}, nil)

	w := makeRequest(router, http.MethodGet, "/api/officers", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []OfficerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestHealthCheck_Success(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		headers  map[string]string
		wantCode int
	}{
		{name: "missing key", url: "/api/incident-list", wantCode: http.StatusUnauthorized},
		{name: "invalid key", url: "/api/incident-list", headers: map[string]string{"X-API-Key": "wrong"}, wantCode: http.StatusUnauthorized},
		{name: "header key", url: "/api/incident-list", headers: map[string]string{"X-API-Key": "test-api-key"}, wantCode: http.StatusOK},
		{name: "bearer key", url: "/api/incident-list", headers: map[string]string{"Authorization": "Bearer test-api-key"}, wantCode: http.StatusOK},
		{name: "query key", url: "/api/incident-list?api_key=test-api-key", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, router := newTestHandler(t, "test-api-key")
			if tt.wantCode == http.StatusOK {
				m.incidents.EXPECT().ListIncidents(gomock.Any()).Return(nil, nil)
			}

			var headers []map[string]string
			if tt.headers != nil {
				headers = append(headers, tt.headers)
			}
			w := makeRequest(router, http.MethodGet, tt.url, nil, headers...)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestAPIKeyAuthMiddleware_PublicRoutesStayOpen(t *testing.T) {
	_, _, router := newTestHandler(t, "test-api-key")

	w := makeRequest(router, http.MethodGet, "/api/system/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStreamIncidentEvents(t *testing.T) {
	_, m, router := newTestHandler(t)

	updates := make(chan events.IncidentUpdated, 1)
	updates <- events.IncidentUpdated{ID: testPK, Status: models.StatusResolved}
	close(updates)
	m.updates.EXPECT().SubscribeUpdated(gomock.Any()).Return((<-chan events.IncidentUpdated)(updates), nil)

	// CloseNotify не поддерживается httptest.ResponseRecorder, поэтому нужен настоящий сервер
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/incident-events")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	stream := strings.Join(lines, "\n")
	assert.Contains(t, stream, "event:incident:updated")
	assert.Contains(t, stream, `"id":"`+testPK+`"`)
	assert.Contains(t, stream, `"status":"RESOLVED"`)
}

func TestStreamIncidentEvents_ClosedOnShutdown(t *testing.T) {
	h, m, router := newTestHandler(t)

	subscribed := make(chan context.Context, 1)
	m.updates.EXPECT().
		SubscribeUpdated(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (<-chan events.IncidentUpdated, error) {
			subscribed <- ctx
			return make(chan events.IncidentUpdated), nil
		})

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/incident-events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var subCtx context.Context
	select {
	case subCtx = <-subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not subscribe")
	}

	h.CloseStreams()

	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, resp.Body)
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream stayed open after CloseStreams")
	}
	assert.Error(t, subCtx.Err())
}

func TestStreamIncidentEvents_SubscribeError(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.updates.EXPECT().SubscribeUpdated(gomock.Any()).Return(nil, errors.New("redis down"))

	w := makeRequest(router, http.MethodGet, "/api/incident-events", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
