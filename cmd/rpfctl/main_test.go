package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPK       = "9b2f3c1e-8d4a-4e55-9a43-1f2e3d4c5b6a"
	testBusiness = "RPF-2026-0001"
)

func incidentJSON(status string) map[string]any {
	return map[string]any{
		"_id":          testPK,
		"id":           testBusiness,
		"incidentId":   testBusiness,
		"issue_type":   "Theft",
		"station":      "Dadar",
		"phone_number": "nill",
		"status":       status,
		"createdAt":    "2026-10-19T08:30:00Z",
	}
}

func newFakeAPI(t *testing.T) (*httptest.Server, *[]string) {
	var patched []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/incident/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "operator-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/status"):
			body, _ := io.ReadAll(r.Body)
			patched = append(patched, r.URL.Path+" "+string(body))
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "Status updated", "incident": incidentJSON("RESOLVED")})
		case r.URL.Path == "/api/incident/"+testPK || r.URL.Path == "/api/incident/"+testBusiness:
			_ = json.NewEncoder(w).Encode(map[string]any{"incident": incidentJSON("OPEN")})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "Incident not found for given id"})
		}
	})
	mux.HandleFunc("/api/incident-list", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"incidents": []any{incidentJSON("OPEN")}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &patched
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	jsonOutput = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestShowResolvesBusinessID(t *testing.T) {
	srv, _ := newFakeAPI(t)

	out, err := runCommand(t, "--api-url", srv.URL, "--api-key", "operator-key", "show", testBusiness)

	require.NoError(t, err)
	assert.Contains(t, out, "("+testBusiness+" resolved to "+testPK+")")
	assert.Regexp(t, `Incident:\s+`+testBusiness, out)
	assert.Regexp(t, `Phone:\s+-\n`, out)
}

func TestStatusPatchesPrimaryKey(t *testing.T) {
	srv, patched := newFakeAPI(t)

	out, err := runCommand(t, "--api-url", srv.URL, "--api-key", "operator-key", "status", testBusiness, "resolved")

	require.NoError(t, err)
	assert.Contains(t, out, testBusiness+": OPEN -> RESOLVED")
	require.Len(t, *patched, 1)
	assert.Equal(t, "/api/incident/"+testPK+`/status {"status":"resolved"}`, (*patched)[0])
}

func TestListFiltersByStatus(t *testing.T) {
	srv, _ := newFakeAPI(t)

	out, err := runCommand(t, "--api-url", srv.URL, "--api-key", "operator-key", "list", "--status", "open")
	require.NoError(t, err)
	assert.Contains(t, out, testBusiness)

	out, err = runCommand(t, "--api-url", srv.URL, "--api-key", "operator-key", "list", "--status", "closed")
	require.NoError(t, err)
	assert.NotContains(t, out, testBusiness)
}

func TestEnvironmentProvidesAPIURL(t *testing.T) {
	srv, _ := newFakeAPI(t)
	t.Setenv("RPF_API_URL", srv.URL)
	t.Setenv("RPF_API_KEY", "operator-key")

	// флаги из прошлых тестов сбрасываются, чтобы значения пришли из окружения
	require.NoError(t, rootCmd.PersistentFlags().Set("api-url", "http://localhost:8080"))
	require.NoError(t, rootCmd.PersistentFlags().Set("api-key", ""))
	rootCmd.PersistentFlags().Lookup("api-url").Changed = false
	rootCmd.PersistentFlags().Lookup("api-key").Changed = false
	require.NoError(t, listCmd.Flags().Set("status", ""))
	listCmd.Flags().Lookup("status").Changed = false

	out, err := runCommand(t, "list")

	require.NoError(t, err)
	assert.Contains(t, out, testBusiness)
}
