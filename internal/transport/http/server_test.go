package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/explorer"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	index := []domain.IndexRecord{
		{Year: 2009, Quarter: 1, RawCPI: 95.2, NominalRPI: 100.0, RealRPI: 99.0},
		{Year: 2009, Quarter: 2, RawCPI: 97.0, NominalRPI: 104.0, RealRPI: 101.0},
		{Year: 2009, Quarter: 3, RawCPI: 98.5, NominalRPI: 107.0, RealRPI: 104.0},
		{Year: 2010, Quarter: 1, RawCPI: 0, NominalRPI: 120.0, RealRPI: 118.0},
	}
	prices := []domain.PriceRecord{
		{Year: 2015, Quarter: 2, Town: "BEDOK", FlatType: "4 ROOM", Price: 420000},
	}
	exp, err := explorer.New(index, prices, explorer.Options{})
	require.NoError(t, err)

	srv := NewServer(exp, nil)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		srv.Hub().Close()
		ts.Close()
	})
	return ts, srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func putBase(t *testing.T, url, body string) (int, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url+"/api/base", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestChart_DefaultsAndRebase(t *testing.T) {
	ts, _ := newTestServer(t)

	var before ChartResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/chart", &before))
	assert.False(t, before.Rebased)
	assert.Equal(t, []string{"2009 Q1", "2009 Q2", "2009 Q3", "2010 Q1"}, before.Chart.Labels)
	assert.Equal(t, "Plotting RPI: 2009 Q1 → 2010 Q1 (base 2009 Q1 = 100)", before.Summary)

	status, body := putBase(t, ts.URL, `{"year":2009,"quarter":1}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["rebased"])
	assert.Equal(t, "2009 Q1", body["label"])

	var after struct {
		Chart struct {
			Datasets []struct {
				Name   string     `json:"name"`
				Values []*float64 `json:"values"`
			} `json:"datasets"`
		} `json:"chart"`
		Rebased bool `json:"rebased"`
	}
	url := ts.URL + "/api/chart?start_year=2009&start_quarter=Q1&end_year=2010&end_quarter=1"
	require.Equal(t, http.StatusOK, getJSON(t, url, &after))
	assert.True(t, after.Rebased)

	realSet := after.Chart.Datasets[1]
	assert.Equal(t, "Real", realSet.Name)
	require.Len(t, realSet.Values, 4)
	assert.InDelta(t, 100, *realSet.Values[0], 1e-9)
	assert.Nil(t, realSet.Values[3], "non-finite values are sent as null")
}

func TestChart_InvalidQuarter(t *testing.T) {
	ts, _ := newTestServer(t)

	var out ErrorResponse
	status := getJSON(t, ts.URL+"/api/chart?start_quarter=7", &out)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PERIOD", out.Code)
}

func TestPutBase_Errors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"not found", `{"year":1999,"quarter":1}`, http.StatusNotFound, "BASE_NOT_FOUND"},
		{"degenerate", `{"year":2010,"quarter":1}`, http.StatusUnprocessableEntity, "DEGENERATE_BASE"},
		{"quarter out of range", `{"year":2009,"quarter":5}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing year", `{"quarter":2}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad json", `{"year":`, http.StatusBadRequest, "INVALID_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := putBase(t, ts.URL, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["code"])
		})
	}

	var base BaseResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/base", &base))
	assert.False(t, base.Rebased, "failed requests leave the store untouched")
	assert.Equal(t, "2009 Q1", base.Label)
}

func TestPutBase_NotFoundSuggestsNearest(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := putBase(t, ts.URL, `{"year":2009,"quarter":4}`)
	require.Equal(t, http.StatusNotFound, status)
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2009 Q3", details["nearest"])
}

func TestPrice(t *testing.T) {
	ts, _ := newTestServer(t)

	var out PriceResponse
	getJSON(t, ts.URL+"/api/price?town=BEDOK&flat_type=4+ROOM&year=2015&quarter=2", &out)
	assert.Equal(t, PriceResponse{Text: "420,000", Found: true}, out)

	out = PriceResponse{}
	getJSON(t, ts.URL+"/api/price?town=BEDOK&flat_type=4+ROOM&year=2015&quarter=3", &out)
	assert.Equal(t, PriceResponse{Text: "—", Hint: "No matching price found."}, out)

	out = PriceResponse{}
	getJSON(t, ts.URL+"/api/price?town=BEDOK", &out)
	assert.Equal(t, PriceResponse{Text: "—", Hint: "Select all fields to see the price."}, out)
}

func TestSelectors(t *testing.T) {
	ts, _ := newTestServer(t)

	var out map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/selectors", &out))
	assert.Equal(t, []interface{}{2009.0, 2010.0}, out["years"])
	assert.Equal(t, []interface{}{"BEDOK"}, out["towns"])
	assert.Equal(t, "2009 Q1", out["default_start"])
	assert.Equal(t, "2010 Q4", out["default_end"])
}

func TestWebsocket_BaseChanged(t *testing.T) {
	ts, srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello Event
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, TypeConnection, hello.Type)
	assert.Eventually(t, func() bool { return srv.Hub().Clients() == 1 }, time.Second, 10*time.Millisecond)

	status, _ := putBase(t, ts.URL, `{"year":2009,"quarter":2}`)
	require.Equal(t, http.StatusOK, status)

	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, TypeBaseChanged, ev.Type)
	assert.Equal(t, "2009 Q2", ev.Base)
	assert.Equal(t, uint64(1), ev.Version)
}
