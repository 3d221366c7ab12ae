package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/pivolan/prf_dashboard/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client, *app) {
	a := testApp()
	srv := httptest.NewServer(newRouter(a))
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}, a
}

func getJSON(t *testing.T, c *http.Client, u string, v interface{}) int {
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func readBody(t *testing.T, resp *http.Response) string {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestPageRendersEveryTab(t *testing.T) {
	srv, c, _ := newTestServer(t)
	for _, tab := range dashboard.Tabs() {
		resp, err := c.Get(srv.URL + "/?tab=" + tab.ID)
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode, tab.ID)
		assert.Contains(t, body, tab.Title)
		assert.Contains(t, body, "/chart?")
		assert.Contains(t, body, "10/01/2023", "period header")
		assert.Contains(t, body, "Notas explicativas")
		assert.Contains(t, body, "Outros / Indefinidos")
	}
}

func TestChartEndpoint(t *testing.T) {
	srv, c, _ := newTestServer(t)

	resp, err := c.Get(srv.URL + "/chart?tab=quantitativos&id=ano-mortos")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "echarts")

	resp, err = c.Get(srv.URL + "/chart?tab=quantitativos&id=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFiltersAreKeptPerSession(t *testing.T) {
	srv, c, _ := newTestServer(t)

	resp, err := c.Post(srv.URL+"/api/filters/uf", "application/json", strings.NewReader(`{"values":["SC","SC",""]}`))
	require.NoError(t, err)
	var sel map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sel))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{"SC"}, sel["selected"])

	var sum summaryResponse
	assert.Equal(t, http.StatusOK, getJSON(t, c, srv.URL+"/api/summary", &sum))
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, int64(3), sum.Summary.Deaths)
	assert.Equal(t, "150,00%", sum.Text.MortalityRate)

	var fresh summaryResponse
	getJSON(t, http.DefaultClient, srv.URL+"/api/summary", &fresh)
	assert.Equal(t, 4, fresh.Rows, "another session sees every row")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/filters", nil)
	require.NoError(t, err)
	resp, err = c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getJSON(t, c, srv.URL+"/api/summary", &sum)
	assert.Equal(t, 4, sum.Rows)
}

func TestSelectAcceptsJSONWithCharset(t *testing.T) {
	srv, c, _ := newTestServer(t)

	resp, err := c.Post(srv.URL+"/api/filters/uf", "application/json; charset=utf-8", strings.NewReader(`{"values":[" SP "]}`))
	require.NoError(t, err)
	var sel map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sel))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{"SP"}, sel["selected"])

	var sum summaryResponse
	getJSON(t, c, srv.URL+"/api/summary", &sum)
	assert.Equal(t, 1, sum.Rows)
}

func TestSessionFromBotLink(t *testing.T) {
	srv, _, a := newTestServer(t)
	a.handleCommand(7, "filtro", "Uf = PR")

	var sum summaryResponse
	getJSON(t, http.DefaultClient, srv.URL+"/api/summary?sessao="+a.chatSession(7), &sum)
	assert.Equal(t, 1, sum.Rows)
}

func TestFilterForm(t *testing.T) {
	srv, c, _ := newTestServer(t)
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	form := url.Values{"tab": {"mapas"}, "f_Ano": {"2024"}, "f_Br": {"101"}, "medida": {"Feridos"}}
	resp, err := c.PostForm(srv.URL+"/filtros", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?medida=Feridos&tab=mapas", resp.Header.Get("Location"))

	var f filtersResponse
	getJSON(t, c, srv.URL+"/api/filters?tab=mapas", &f)
	assert.Equal(t, 2, f.Rows)
	require.Len(t, f.Tab, 2)
	assert.Equal(t, []string{"101"}, f.Tab[0].Selected)
}

func TestAggregateAPI(t *testing.T) {
	srv, c, _ := newTestServer(t)

	var res struct {
		Category string `json:"category"`
		Rows     []struct {
			Value   string  `json:"value"`
			Total   float64 `json:"total"`
			Percent float64 `json:"percent"`
		} `json:"rows"`
	}
	code := getJSON(t, c, srv.URL+"/api/aggregate?categoria=regiao&medida=mortos&ordem=asc", &res)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Região", res.Category)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Sudeste", res.Rows[0].Value)
	assert.Equal(t, 100.0, res.Rows[1].Percent)

	var e map[string]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, c, srv.URL+"/api/aggregate?categoria=Data%20Inversa", &e))
	assert.NotEmpty(t, e["error"])
}

func TestTimeSeriesAPI(t *testing.T) {
	srv, c, _ := newTestServer(t)

	var s seriesResponse
	code := getJSON(t, c, srv.URL+"/api/timeseries?periodo=ano&de=2022-01-01", &s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "year", s.Period)
	points, ok := s.Points.([]interface{})
	require.True(t, ok)
	assert.Len(t, points, 3, "2022 is zero-filled")

	var e map[string]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, c, srv.URL+"/api/timeseries?de=ontem", &e))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, c, srv.URL+"/api/timeseries?periodo=dia&de=0001-01-02&ate=9999-12-31", &e))
	assert.Contains(t, e["error"], "too many periods")
}

func TestRecordsAndExport(t *testing.T) {
	srv, c, _ := newTestServer(t)

	var rec recordsResponse
	getJSON(t, c, srv.URL+"/api/records?limite=1&inicio=1", &rec)
	assert.Equal(t, 4, rec.Total)
	require.Len(t, rec.Rows, 1)
	assert.Equal(t, len(rec.Header), len(rec.Rows[0]))

	resp, err := c.Get(srv.URL + "/export.xlsx")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}
