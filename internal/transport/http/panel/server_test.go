package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"rsadesk/internal/config"
	"rsadesk/internal/desk"
	"rsadesk/internal/executor"
	"rsadesk/internal/store"
	"rsadesk/internal/trade"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDesk struct {
	rows      []store.Row
	rowsErr   error
	submitted []trade.Order
	submitErr error
	cleared   int
	syncRes   executor.SyncResult
	syncErr   error
}

func (f *fakeDesk) Brokers() []string { return []string{"All", "Chase", "Schwab"} }

func (f *fakeDesk) Submit(_ context.Context, o trade.Order) (desk.RoundReport, error) {
	f.submitted = append(f.submitted, o)
	if _, err := trade.Validate(o); err != nil {
		return desk.RoundReport{}, err
	}
	if f.submitErr != nil {
		return desk.RoundReport{}, f.submitErr
	}
	item := trade.WorkItem{Side: o.Side, Quantity: o.Quantity, Broker: o.Brokers[0]}
	return desk.RoundReport{
		ID:    "r1",
		Order: o,
		Items: []trade.WorkItem{item},
		Results: []executor.Result{
			{Item: item, Stdout: []string{"bought"}, Stderr: []string{"warn"}},
		},
	}, nil
}

func (f *fakeDesk) Rows(context.Context) ([]store.Row, error) { return f.rows, f.rowsErr }

func (f *fakeDesk) Clear(context.Context) error {
	f.cleared++
	f.rows = nil
	return nil
}

func (f *fakeDesk) Sync(context.Context) (executor.SyncResult, error) { return f.syncRes, f.syncErr }

func newTestServer(t *testing.T, d Desk, accounts map[string]string) http.Handler {
	t.Helper()
	srv, err := NewServer(ServerConfig{Desk: d, Accounts: accounts})
	require.NoError(t, err)
	return srv.Handler()
}

func do(h http.Handler, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get("msg"), loc.Query().Get("level")
}

const (
	formType = "application/x-www-form-urlencoded"
	jsonType = "application/json"
)

func TestIndexRendersBrokersAndRows(t *testing.T) {
	d := &fakeDesk{rows: []store.Row{{Output: "Schwab: bought <1> AAPL", Broker: "Schwab"}}}
	h := newTestServer(t, d, nil)

	rec := do(h, http.MethodGet, "/?msg=hello&level=warning", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Chase">Chase</option>`)
	assert.Contains(t, body, "Schwab: bought &lt;1&gt; AAPL")
	assert.Contains(t, body, `class="flash warning">hello`)
}

func TestIndexShowsEmptyTableOnStoreError(t *testing.T) {
	d := &fakeDesk{rowsErr: errors.New("load output: bad csv")}
	rec := do(newTestServer(t, d, nil), http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "load output: bad csv")
	assert.NotContains(t, rec.Body.String(), "<table>")
}

func TestFormBuy(t *testing.T) {
	d := &fakeDesk{}
	h := newTestServer(t, d, nil)

	form := url.Values{"brokers": {"Chase", "Schwab"}, "tickers": {"AAPL,MSFT"}, "quantity": {"3"}, "dry_run": {"true"}}
	msg, level := flashOf(t, do(h, http.MethodPost, "/orders/buy", form.Encode(), formType))
	assert.Equal(t, "info", level)
	assert.Equal(t, "BUY sent to 1 broker, 1 line captured", msg)

	require.Len(t, d.submitted, 1)
	got := d.submitted[0]
	assert.Equal(t, trade.SideBuy, got.Side)
	assert.Equal(t, []string{"Chase", "Schwab"}, got.Brokers)
	assert.Equal(t, "AAPL,MSFT", got.Tickers)
	assert.Equal(t, 3, got.Quantity)
	assert.True(t, got.DryRun)
}

func TestFormSellValidation(t *testing.T) {
	d := &fakeDesk{}
	h := newTestServer(t, d, nil)

	msg, level := flashOf(t, do(h, http.MethodPost, "/orders/sell", url.Values{"tickers": {"AAPL"}}.Encode(), formType))
	assert.Equal(t, trade.MsgBrokersEmpty, msg)
	assert.Equal(t, "warning", level)

	form := url.Values{"brokers": {"Chase"}, "tickers": {"AAPL"}, "quantity": {"abc"}}
	msg, _ = flashOf(t, do(h, http.MethodPost, "/orders/sell", form.Encode(), formType))
	assert.Equal(t, trade.MsgQuantityInvalid, msg)
}

func TestFormClearAndSync(t *testing.T) {
	d := &fakeDesk{rows: []store.Row{{Output: "x"}}}
	h := newTestServer(t, d, nil)

	msg, _ := flashOf(t, do(h, http.MethodPost, "/output/clear", "", formType))
	assert.Equal(t, "Output cleared.", msg)
	assert.Equal(t, 1, d.cleared)

	msg, _ = flashOf(t, do(h, http.MethodPost, "/sync", "", formType))
	assert.Equal(t, "Syncing Complete.", msg)

	d.syncErr = config.ErrRequirementsNotConfigured
	msg, level := flashOf(t, do(h, http.MethodPost, "/sync", "", formType))
	assert.Contains(t, msg, "requirements")
	assert.Equal(t, "warning", level)
}

func TestAPIOrder(t *testing.T) {
	d := &fakeDesk{}
	h := newTestServer(t, d, nil)

	rec := do(h, http.MethodPost, "/api/orders",
		`{"side":"sell","brokers":["Chase"],"tickers":"AAPL","quantity":2}`, jsonType)
	require.Equal(t, http.StatusOK, rec.Code)
	var view roundView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "r1", view.Round)
	assert.Equal(t, 1, view.Captured)
	require.Len(t, view.Results, 1)
	assert.Equal(t, "Chase", view.Results[0].Broker)
	assert.Equal(t, []string{"warn"}, view.Results[0].Stderr)
	assert.Equal(t, trade.SideSell, d.submitted[0].Side)
}

func TestAPIOrderErrors(t *testing.T) {
	d := &fakeDesk{}
	h := newTestServer(t, d, nil)

	rec := do(h, http.MethodPost, "/api/orders", `{"side":"hold","brokers":["Chase"],"tickers":"AAPL","quantity":1}`, jsonType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/orders", `{"side":"buy","brokers":["Chase"],"tickers":"","quantity":1}`, jsonType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), trade.MsgTickersEmpty)

	d.submitErr = config.ErrScriptNotConfigured
	rec = do(h, http.MethodPost, "/api/orders", `{"side":"buy","brokers":["Chase"],"tickers":"AAPL","quantity":1}`, jsonType)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIOutput(t *testing.T) {
	d := &fakeDesk{rows: []store.Row{{ID: 1, Output: "line"}}}
	h := newTestServer(t, d, nil)

	rec := do(h, http.MethodGet, "/api/output", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"output":"line"`)

	rec = do(h, http.MethodDelete, "/api/output", "", jsonType)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/output", "", "")
	assert.JSONEq(t, `{"rows":[]}`, rec.Body.String())

	d.rowsErr = config.ErrOutputNotConfigured
	rec = do(h, http.MethodGet, "/api/output", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIBrokersAndSync(t *testing.T) {
	d := &fakeDesk{syncRes: executor.SyncResult{Stdout: []string{"ok"}}}
	h := newTestServer(t, d, nil)

	rec := do(h, http.MethodGet, "/api/brokers", "", "")
	assert.JSONEq(t, `{"brokers":["All","Chase","Schwab"]}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/api/sync", "", jsonType)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exit_code":0,"stdout":["ok"],"stderr":[]}`, rec.Body.String())
}

func TestAPIRequiresJSONBody(t *testing.T) {
	d := &fakeDesk{rows: []store.Row{{Output: "keep"}}}
	h := newTestServer(t, d, nil)

	body := `{"side":"buy","brokers":["Chase"],"tickers":"AAPL","quantity":1}`
	rec := do(h, http.MethodPost, "/api/orders", body, "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	rec = do(h, http.MethodPost, "/api/orders", url.Values{"side": {"buy"}}.Encode(), formType)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	rec = do(h, http.MethodDelete, "/api/output", "", "")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	rec = do(h, http.MethodPost, "/api/sync", "", "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Empty(t, d.submitted)
	assert.Zero(t, d.cleared)

	rec = do(h, http.MethodPost, "/api/orders", body, "application/json; charset=utf-8")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFormRejectsCrossSitePosts(t *testing.T) {
	d := &fakeDesk{}
	h := newTestServer(t, d, nil)
	form := url.Values{"brokers": {"Chase"}, "tickers": {"AAPL"}, "quantity": {"1"}}.Encode()

	post := func(target string, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form))
		req.Header.Set("Content-Type", formType)
		for k, v := range header {
			req.Header[k] = v
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, post("/orders/buy", http.Header{"Origin": {"https://evil.test"}}).Code)
	assert.Equal(t, http.StatusForbidden, post("/orders/sell", http.Header{"Origin": {"null"}}).Code)
	assert.Equal(t, http.StatusForbidden, post("/output/clear", http.Header{"Sec-Fetch-Site": {"cross-site"}}).Code)
	assert.Equal(t, http.StatusForbidden, post("/sync", http.Header{"Sec-Fetch-Site": {"same-site"}}).Code)
	assert.Empty(t, d.submitted)
	assert.Zero(t, d.cleared)

	// httptest requests are addressed to example.com
	rec := post("/orders/buy", http.Header{"Origin": {"http://example.com"}, "Sec-Fetch-Site": {"same-origin"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/", "", "").Code)
	require.Len(t, d.submitted, 1)
}

func TestBasicAuth(t *testing.T) {
	h := newTestServer(t, &fakeDesk{}, map[string]string{"drew": "secret"})

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/brokers", "", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/brokers", nil)
	req.SetBasicAuth("drew", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServerRequiresDesk(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}
