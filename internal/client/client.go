// Package client - HTTP-клиент API инцидентов для консоли оператора.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
)

// ErrNotFound - сервер не нашел инцидент или вернул пустой документ
var ErrNotFound = errors.New("client: incident not found")

// Document - инцидент в том виде, в каком его отдает API
type Document struct {
	PrimaryKey  string `json:"_id"`
	ID          string `json:"id"`
	ExternalID  string `json:"externalId,omitempty"`
	IncidentID  string `json:"incidentId,omitempty"`
	IssueType   string `json:"issue_type"`
	PhoneNumber string `json:"phone_number"`
	Station     string `json:"station"`
	Status      string `json:"status"`
	Officer     string `json:"officer,omitempty"`
	ActionTime  string `json:"action_time,omitempty"`
	AudioURL    string `json:"audio_url,omitempty"`
	Date        string `json:"date,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Matches - совпадает ли id с первичным ключом, полем id, старым id записи или бизнес-идентификатором
func (d *Document) Matches(id string) bool {
	if d == nil || id == "" {
		return false
	}
	return d.PrimaryKey == id || d.ID == id || d.ExternalID == id || d.IncidentID == id
}

// SecondaryID - старый id записи. Если сервер его не прислал, берется поле id.
func (d *Document) SecondaryID() string {
	if d.ExternalID != "" {
		return d.ExternalID
	}
	return d.ID
}

// Transition - запись журнала статусов
type Transition struct {
	FromStatus models.Status `json:"from_status"`
	ToStatus   models.Status `json:"to_status"`
	ChangedAt  time.Time     `json:"changed_at"`
}

// APIError возвращается, когда сервер ответил кодом 4xx/5xx
type APIError struct {
	StatusCode int
	Message    string
	Tried      []incidentkey.Clause
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("client: HTTP %d: %s", e.StatusCode, e.Message)
}

// Is позволяет проверять 404 через errors.Is(err, ErrNotFound)
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client - клиент одного сервера API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option настраивает Client
type Option func(*Client)

// WithAPIKey задает ключ для заголовка X-API-Key
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient подменяет http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout задает таймаут обычных запросов. На поток событий он не влияет.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New создает клиент для сервера baseURL (например "http://localhost:8080")
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetIncident загружает инцидент по любому идентификатору
func (c *Client) GetIncident(ctx context.Context, id string) (*Document, error) {
	var resp struct {
		Incident *Document `json:"incident"`
	}
	if err := c.doJSON(ctx, http.MethodGet, incidentPath(id, ""), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Incident == nil {
		return nil, ErrNotFound
	}
	return resp.Incident, nil
}

// ListIncidents загружает весь список инцидентов
func (c *Client) ListIncidents(ctx context.Context) ([]Document, error) {
	var resp struct {
		Incidents []Document `json:"incidents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/incident-list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Incidents, nil
}

// UpdateStatus меняет статус инцидента
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (*Document, error) {
	var resp struct {
		Incident *Document `json:"incident"`
	}
	body := map[string]string{"status": status}
	if err := c.doJSON(ctx, http.MethodPatch, incidentPath(id, "status"), body, &resp); err != nil {
		return nil, err
	}
	if resp.Incident == nil {
		return nil, fmt.Errorf("client: status update for %s returned no incident", id)
	}
	return resp.Incident, nil
}

// UpdateStaffAndTime назначает ответственного и время реагирования
func (c *Client) UpdateStaffAndTime(ctx context.Context, id, dutyStaff, actionTime string) (*Document, error) {
	var resp struct {
		Incident *Document `json:"incident"`
	}
	body := map[string]string{
		"dutyStaff":   dutyStaff,
		"action_time": actionTime,
		"incidentId":  id,
	}
	if err := c.doJSON(ctx, http.MethodPatch, incidentPath(id, "staff-and-time"), body, &resp); err != nil {
		return nil, err
	}
	if resp.Incident == nil {
		return nil, fmt.Errorf("client: staff update for %s returned no incident", id)
	}
	return resp.Incident, nil
}

// Timeline загружает журнал смены статусов
func (c *Client) Timeline(ctx context.Context, id string) ([]Transition, error) {
	var resp struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, incidentPath(id, "timeline"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

func incidentPath(id, suffix string) string {
	p := "/api/incident/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("client: %s %s: decode: %w", method, path, err)
		}
	}
	return nil
}

func parseError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var body struct {
		Message string               `json:"message"`
		Error   string               `json:"error"`
		Tried   []incidentkey.Clause `json:"tried"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		apiErr.Tried = body.Tried
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
