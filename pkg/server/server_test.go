package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

func testDataset() *model.Dataset {
	ds := model.NewDataset()
	ds.Add("Reliance Industries Ltd", model.Company{
		Name: "Reliance Industries Ltd", MarketCap: model.NewMarketCap(1734567),
		NSESymbol: "RELIANCE", BSECode: "500325", ISIN: "INE002A01018",
	})
	ds.Add("Reliance Power Ltd", model.Company{
		Name: "Reliance Power Ltd", MarketCap: model.NewMarketCap(12000),
		NSESymbol: "RPOWER", BSECode: "532939",
	})
	ds.Add("Infosys Ltd", model.Company{
		Name: "Infosys Ltd", MarketCap: model.NewMarketCap(650000),
		NSESymbol: "INFY", BSECode: "500209",
	})
	return ds
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := New(Config{AllowAll: true}, testDataset(), zerolog.Nop())
	t.Cleanup(srv.hub.Stop)
	return srv
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type listBody struct {
	Count  int              `json:"count"`
	Result []map[string]any `json:"result"`
}

func TestHealthCheck(t *testing.T) {
	w := get(t, newTestServer(t).Router(), "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 3, body["companies"])
}

func TestCompany_NameFilter(t *testing.T) {
	w := get(t, newTestServer(t).Router(), "/api/company?name=RELIANCE")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Result, 2)
	assert.Equal(t, "Reliance Industries Ltd", body.Result[0]["companyname"])
	assert.Equal(t, "Reliance Power Ltd", body.Result[1]["companyname"])
}

func TestCompany_NameWithoutMatches(t *testing.T) {
	w := get(t, newTestServer(t).Router(), "/api/company?name=zzz")
	require.Equal(t, http.StatusOK, w.Code)

	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Result, "empty result is an array, not null")
}

func TestCompany_ExactLookups(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
		want   string
	}{
		{"NSE", "/api/company?nse=INFY", http.StatusOK, "Infosys Ltd"},
		{"BSE", "/api/company?bse=532939", http.StatusOK, "Reliance Power Ltd"},
		{"NSEIsCaseSensitive", "/api/company?nse=infy", http.StatusNotFound, ""},
		{"UnknownBSE", "/api/company?bse=1", http.StatusNotFound, ""},
		{"NSEBeatsBSE", "/api/company?nse=RPOWER&bse=500209", http.StatusOK, "Reliance Power Ltd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, srv.Router(), tt.target)
			require.Equal(t, tt.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.status == http.StatusNotFound {
				assert.Equal(t, map[string]any{"error": "Company not found"}, body)
				return
			}
			assert.Equal(t, tt.want, body["companyname"])
		})
	}
}

func TestCompany_NameTakesPrecedence(t *testing.T) {
	w := get(t, newTestServer(t).Router(), "/api/company?name=infosys&nse=RELIANCE")
	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Infosys Ltd", body.Result[0]["companyname"])
}

func TestCompany_AllRecords(t *testing.T) {
	w := get(t, newTestServer(t).Router(), "/api/company")
	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "Reliance Industries Ltd", body.Result[0]["companyname"], "source order")
	assert.EqualValues(t, 1734567, body.Result[0]["mcap"])
}

func TestCORSHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/company", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	newTestServer(t).Router().ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetDataset_SwapsData(t *testing.T) {
	srv := newTestServer(t)
	srv.SetDataset(model.DatasetOf(model.Company{Name: "Only One"}), "abc")

	w := get(t, srv.Router(), "/api/company")
	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	srv.SetDataset(nil, "")
	assert.Equal(t, 0, srv.Dataset().Len())
}

func TestEvents_StreamsReloads(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for lines.Scan() {
			line := lines.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return event, data
			}
		}
		return event, data
	}

	ev, _ := readEvent()
	require.Equal(t, "connected", ev)
	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	srv.SetDataset(model.DatasetOf(model.Company{Name: "A"}, model.Company{Name: "B"}), "deadbeef")

	ev, data := readEvent()
	assert.Equal(t, "reload", ev)
	var payload ReloadEvent
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, ReloadEvent{Count: 2, Hash: "deadbeef"}, payload)
}

func TestHub_StopRejectsNewClients(t *testing.T) {
	h := NewHub()
	h.Stop()
	h.Stop()
	h.Broadcast(ReloadEvent{Count: 1})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	h.SSEHandler()(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0, h.ClientCount())
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0"}, testDataset(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
