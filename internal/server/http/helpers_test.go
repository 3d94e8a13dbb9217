package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/helpdesk/internal/notify"
	"github.com/and161185/helpdesk/internal/notify/notifytest"
	"github.com/and161185/helpdesk/internal/repository/memory"
	"github.com/and161185/helpdesk/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	router   *gin.Engine
	store    *memory.Store
	rec      *notifytest.Recorder
	dispatch *notify.Dispatcher
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := memory.New()
	rec := &notifytest.Recorder{}
	d := notify.NewDispatcher(log, 0)
	sessions := service.NewSessionValidator(store)

	if opts.Log == nil {
		opts.Log = log
	}
	srv := New(
		service.NewAuthService(store, sessions),
		service.NewMessageService(store, rec, d),
		sessions,
		opts,
	)
	return &testEnv{router: srv.Router(), store: store, rec: rec, dispatch: d}
}

type request struct {
	method  string
	target  string
	token   string
	body    any
	raw     string
	headers map[string]string
}

func serve(t *testing.T, h http.Handler, r request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch {
	case r.raw != "":
		buf.WriteString(r.raw)
	case r.body != nil:
		if err := json.NewEncoder(&buf).Encode(r.body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(r.method, r.target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set(TokenHeader, r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()
	w := serve(t, e.router, request{method: http.MethodPost, target: "/auth?action=register",
		body: map[string]string{"email": email, "password": password}})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	return decode(t, w)["token"].(string)
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	w := serve(t, e.router, request{method: http.MethodPost, target: "/auth?action=login",
		body: map[string]string{"email": email, "password": password}})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	return decode(t, w)["token"].(string)
}

func (e *testEnv) drain(t *testing.T) []notifytest.Sent {
	t.Helper()
	if err := e.dispatch.Wait(context.Background()); err != nil {
		t.Fatalf("dispatcher wait: %v", err)
	}
	return e.rec.Sent()
}
