package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartflow/chartflow/pkg/store"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(store.NewMemoryStore(), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func lineSpec() map[string]any {
	return map[string]any{
		"marks": []map[string]any{{
			"type":   "line",
			"encode": map[string]string{"x": "ts", "y": "cpu"},
		}},
		"temporal": map[string]any{"mode": "axis", "field": "ts", "range": 5},
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChartSessionLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	// Create from an inline spec.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/charts", map[string]any{"spec": lineSpec()})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)
	base := ts.URL + "/v1/charts/" + created.ID

	// Push rows.
	resp, body = doJSON(t, http.MethodPost, base+"/rows", map[string]any{
		"rows": []map[string]any{
			{"ts": 1000, "cpu": 40.0},
			{"ts": 2000, "cpu": 41.0},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var pushed struct {
		Buffered int `json:"buffered"`
	}
	require.NoError(t, json.Unmarshal(body, &pushed))
	assert.Equal(t, 2, pushed.Buffered)

	// Pull the compiled configuration.
	resp, body = doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg struct {
		Type     string           `json:"type"`
		Children []map[string]any `json:"children"`
		Data     []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, "view", cfg.Type)
	assert.Len(t, cfg.Children, 1)
	assert.Len(t, cfg.Data, 2)

	// Clear the buffer.
	resp, _ = doJSON(t, http.MethodDelete, base+"/rows", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg.Data = nil // Unmarshal leaves absent keys untouched; drop the previous response's rows.
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Empty(t, cfg.Data)

	// Destroy the session.
	resp, _ = doJSON(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPushRows_ModeOverride(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/charts", map[string]any{"spec": lineSpec()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	rowsURL := fmt.Sprintf("%s/v1/charts/%s/rows", ts.URL, created.ID)

	_, _ = doJSON(t, http.MethodPost, rowsURL, map[string]any{
		"rows": []map[string]any{{"ts": 1}, {"ts": 2}},
	})

	resp, body = doJSON(t, http.MethodPost, rowsURL, map[string]any{
		"rows": []map[string]any{{"ts": 3}},
		"mode": "replace",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pushed struct {
		Buffered int `json:"buffered"`
	}
	require.NoError(t, json.Unmarshal(body, &pushed))
	assert.Equal(t, 1, pushed.Buffered)

	// Unknown modes are rejected.
	resp, _ = doJSON(t, http.MethodPost, rowsURL, map[string]any{
		"rows": []map[string]any{{"ts": 4}},
		"mode": "merge",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateChart_Validation(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing spec and name", map[string]any{}, http.StatusBadRequest},
		{"unknown stored spec", map[string]any{"specName": "nope"}, http.StatusNotFound},
		{
			"invalid temporal mode",
			map[string]any{"spec": map[string]any{
				"temporal": map[string]any{"mode": "bogus", "field": "ts"},
			}},
			http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/charts", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode, string(body))
		})
	}
}

func TestSpecStoreRoutes(t *testing.T) {
	_, ts := newTestServer(t)

	// Store a spec, then create a chart by name.
	resp, body := doJSON(t, http.MethodPut, ts.URL+"/v1/specs/cpu", lineSpec())
	require.Equal(t, http.StatusNoContent, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/specs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Specs []string `json:"specs"`
	}
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Equal(t, []string{"cpu"}, listed.Specs)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/specs/cpu", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/v1/charts", map[string]any{"specName": "cpu"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	// Invalid stored specs are rejected before they reach the store.
	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/v1/specs/bad", map[string]any{
		"temporal": map[string]any{"mode": "bogus", "field": "ts"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/v1/specs/cpu", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/specs/cpu", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorBodyShape(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/charts/unknown", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "CHART_NOT_FOUND", e.Code)
	assert.NotEmpty(t, e.Message)
}
