package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"doi-frontend/api/common/statecode"
	"doi-frontend/config"
	"doi-frontend/internal/bootstrap"
	"doi-frontend/internal/chain"
	"doi-frontend/internal/contract/contracttest"
	"doi-frontend/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type retrieved struct {
	Id    uint64     `json:"id"`
	Data  string     `json:"data"`
	State view.State `json:"state"`
}

func newApp(t *testing.T, sim *contracttest.Simulated) *bootstrap.App {
	t.Helper()
	conf := config.Default()
	conf.Chain.ReceiptPollIntervalMs = 1
	conf.Journal.Driver = "memory"
	app, err := bootstrap.New(conf, bootstrap.WithDialer(func(ctx context.Context) (chain.Ledger, error) {
		return sim, nil
	}))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func readyApp(t *testing.T, sim *contracttest.Simulated) (*bootstrap.App, *gin.Engine) {
	t.Helper()
	app := newApp(t, sim)
	require.NoError(t, app.View.Init(context.Background()))
	return app, NewEngine(app)
}

func postJSON(t *testing.T, e http.Handler, path, body string) envelope {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func get(e http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLoadingPage(t *testing.T) {
	app := newApp(t, contracttest.New())
	e := NewEngine(app)

	w := get(e, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), view.StatusLoading)
	assert.NotContains(t, w.Body.String(), "Register New Object")
}

func TestReadyPage(t *testing.T) {
	sim := contracttest.New()
	sim.Seed("a", "b")
	_, e := readyApp(t, sim)

	body := get(e, "/").Body.String()
	assert.Contains(t, body, "<h1>Digital Object Identifier</h1>")
	assert.Contains(t, body, `Total objects: <span id="count">2</span>`)
	assert.Contains(t, body, "Register New Object")
	assert.Contains(t, body, "Retrieve Object")
	assert.Contains(t, body, `min="1"`)
}

func TestRegisterAndLookupJSON(t *testing.T) {
	sim := contracttest.New()
	_, e := readyApp(t, sim)

	env := postJSON(t, e, "/objects", `{"data":"hello"}`)
	require.Equal(t, statecode.CommonSuccess, env.Code)
	var reg struct {
		Id    uint64     `json:"id"`
		State view.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	assert.Equal(t, uint64(1), reg.Id)
	assert.Equal(t, uint64(1), reg.State.Count)
	assert.Equal(t, "Object registered successfully with ID: 1", reg.State.Status)

	env = postJSON(t, e, "/objects/lookup", `{"id":1}`)
	require.Equal(t, statecode.CommonSuccess, env.Code)
	var got retrieved
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "hello", got.Data)
	assert.Equal(t, view.StatusRetrieved, got.State.Status)

	env = postJSON(t, e, "/objects/lookup", `{"id":5}`)
	assert.Equal(t, statecode.RetrieveObjectErr, env.Code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, view.StatusRetrieveFailed, got.State.Status)
}

func TestRegisterEmptyPayload(t *testing.T) {
	sim := contracttest.New()
	_, e := readyApp(t, sim)

	env := postJSON(t, e, "/objects", `{"data":""}`)
	assert.Equal(t, statecode.CommonSuccess, env.Code)
	assert.Equal(t, []string{""}, sim.Objects())

	env = postJSON(t, e, "/objects", ``)
	assert.Equal(t, statecode.ParameterEmptyErr, env.Code)
}

func TestLookupRejectsBadIDWithoutCalls(t *testing.T) {
	sim := contracttest.New()
	_, e := readyApp(t, sim)
	before := sim.Calls("")

	for _, body := range []string{`{"id":0}`, `{"id":-1}`, `{"id":"x"}`, `{}`} {
		env := postJSON(t, e, "/objects/lookup", body)
		assert.Equal(t, statecode.ObjectIdErr, env.Code, body)
	}
	for _, path := range []string{"/objects/0", "/objects/-3", "/objects/abc"} {
		var env envelope
		require.NoError(t, json.Unmarshal(get(e, path).Body.Bytes(), &env))
		assert.Equal(t, statecode.ObjectIdErr, env.Code, path)
	}
	assert.Equal(t, before, sim.Calls(""))
}

func TestGetByPath(t *testing.T) {
	sim := contracttest.New()
	sim.Seed("first")
	_, e := readyApp(t, sim)

	w := get(e, "/objects/1")
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, statecode.CommonSuccess, env.Code)
	var got retrieved
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "first", got.Data)
}

func TestFormPostRedirects(t *testing.T) {
	sim := contracttest.New()
	_, e := readyApp(t, sim)

	form := url.Values{"data": {"from the form"}}
	req := httptest.NewRequest(http.MethodPost, "/objects", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	form = url.Values{"id": {"1"}}
	req = httptest.NewRequest(http.MethodPost, "/objects/lookup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	body := get(e, "/").Body.String()
	assert.Contains(t, body, `Total objects: <span id="count">1</span>`)
	assert.Contains(t, body, "Object retrieved successfully")
	assert.Contains(t, body, "from the form")
	assert.Contains(t, body, "Recent registrations")
}

func TestOperationsBeforeInit(t *testing.T) {
	sim := contracttest.New()
	app := newApp(t, sim)
	e := NewEngine(app)

	env := postJSON(t, e, "/objects", `{"data":"early"}`)
	assert.Equal(t, statecode.LedgerNotReady, env.Code)
	env = postJSON(t, e, "/objects/lookup", `{"id":1}`)
	assert.Equal(t, statecode.LedgerNotReady, env.Code)
	assert.Equal(t, 0, sim.Calls(""))
	assert.Empty(t, sim.Objects())
}

func TestStateAndMetrics(t *testing.T) {
	sim := contracttest.New()
	_, e := readyApp(t, sim)

	var env envelope
	require.NoError(t, json.Unmarshal(get(e, "/api/state").Body.Bytes(), &env))
	var st view.State
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, view.PhaseReady, st.Phase)
	assert.Equal(t, "5777", st.NetworkID)

	w := get(e, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `doi_ledger_calls_total{method="eth_accounts",result="ok"} 1`)
}

func TestWebsocketPushesState(t *testing.T) {
	sim := contracttest.New()
	app, e := readyApp(t, sim)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	readState := func() view.State {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var st view.State
		require.NoError(t, json.Unmarshal(msg, &st))
		return st
	}

	first := readState()
	assert.Equal(t, view.PhaseReady, first.Phase)
	assert.Equal(t, uint64(0), first.Count)

	// 订阅在首条消息之前建立，之后的变化都会推送
	_, err = app.View.SubmitRecord(context.Background(), "pushed")
	require.NoError(t, err)

	var last view.State
	for last.Count != 1 || last.Status != "Object registered successfully with ID: 1" {
		last = readState()
		assert.Greater(t, last.Version, first.Version)
	}
}

func TestFailedInitPage(t *testing.T) {
	sim := contracttest.New()
	sim.AccountsErr = errors.New("node down")
	app := newApp(t, sim)
	require.Error(t, app.View.Init(context.Background()))
	e := NewEngine(app)

	body := get(e, "/").Body.String()
	assert.Contains(t, body, view.StatusInitFailed)
	assert.Contains(t, body, `<div id="failed">`)
	assert.NotContains(t, body, "Register New Object")
	assert.NotContains(t, body, "Retrieve Object")
	assert.NotContains(t, body, `action="/objects"`)
}

func TestCors(t *testing.T) {
	sim := contracttest.New()
	_, e := readyApp(t, sim)

	// protocol://domain_name:port from the default config
	req := httptest.NewRequest(http.MethodOptions, "/objects", nil)
	req.Header.Set("Origin", "http://127.0.0.1:8080")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://127.0.0.1:8080", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/objects", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestForeignOriginCannotRegister(t *testing.T) {
	sim := contracttest.New()
	_, e := readyApp(t, sim)

	req := httptest.NewRequest(http.MethodPost, "/objects", strings.NewReader(`{"data":"spend gas"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://evil.test")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, sim.Objects())
	assert.Zero(t, sim.Calls("eth_sendTransaction"))

	// same host as the request is always allowed
	req = httptest.NewRequest(http.MethodPost, "/objects", strings.NewReader(`{"data":"ok"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://"+req.Host)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ok"}, sim.Objects())

	// cross-origin reads still work, just without CORS headers
	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	_, e := readyApp(t, contracttest.New())
	srv := httptest.NewServer(e)
	defer srv.Close()

	header := http.Header{"Origin": {"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
