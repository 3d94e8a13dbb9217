package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessages_AuthRequired(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, Options{})

	tests := []struct {
		name   string
		method string
		action string
		token  string
		code   int
	}{
		{"send anonymous", http.MethodPost, "send", "", http.StatusUnauthorized},
		{"send unknown token", http.MethodPost, "send", "deadbeef", http.StatusUnauthorized},
		{"my anonymous", http.MethodGet, "my", "", http.StatusUnauthorized},
		{"admin_list anonymous", http.MethodGet, "admin_list", "", http.StatusForbidden},
		{"admin_reply anonymous", http.MethodPost, "admin_reply", "", http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, e.router, request{method: tc.method, target: "/messages?action=" + tc.action, token: tc.token,
				body: map[string]any{"subject": "s", "body": "b", "message_id": 1, "reply": "r"}})
			require.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
	require.Zero(t, e.store.MessageCount())
	require.Empty(t, e.drain(t))
}

func TestMessages_NonAdminForbidden(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, Options{})
	tok := e.register(t, "u@x.com", "secret1")

	w := serve(t, e.router, request{method: http.MethodGet, target: "/messages?action=admin_list", token: tok})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "access denied", decode(t, w)["error"])

	w = serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=admin_reply", token: tok,
		body: map[string]any{"message_id": 1, "reply": "x"}})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestMessages_SendValidation(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, Options{})
	tok := e.register(t, "u@x.com", "secret1")

	w := serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=send", token: tok,
		body: map[string]string{"subject": "   ", "body": "Help"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "subject and body are required", decode(t, w)["error"])

	w = serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=send", token: tok, raw: "[1,2"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid request body", decode(t, w)["error"])

	require.Zero(t, e.store.MessageCount())
	require.Empty(t, e.drain(t))
}

func TestMessages_AdminReplyFailures(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, Options{})
	e.register(t, "admin@x.com", "adminpw")
	require.True(t, e.store.SetAdmin("admin@x.com", true))
	ta := e.login(t, "admin@x.com", "adminpw")

	w := serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=admin_reply", token: ta,
		body: map[string]any{"reply": "x"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "message id and reply text are required", decode(t, w)["error"])

	w = serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=admin_reply", token: ta,
		body: map[string]any{"message_id": 5, "reply": ""}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=admin_reply", token: ta,
		body: map[string]any{"message_id": 404, "reply": "x"}})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "message not found", decode(t, w)["error"])

	require.Empty(t, e.drain(t), "no mail for failed replies")
}

func TestMessages_Isolation(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, Options{})
	alice := e.register(t, "alice@x.com", "secret1")
	bob := e.register(t, "bob@x.com", "secret1")

	for _, tok := range []string{alice, alice, bob} {
		w := serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=send", token: tok,
			body: map[string]string{"subject": "s", "body": "b"}})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(t, e.router, request{method: http.MethodGet, target: "/messages?action=my", token: bob})
	require.Len(t, decode(t, w)["messages"].([]any), 1)

	w = serve(t, e.router, request{method: http.MethodGet, target: "/messages?action=my", token: alice})
	msgs := decode(t, w)["messages"].([]any)
	require.Len(t, msgs, 2)
	require.Equal(t, float64(2), msgs[0].(map[string]any)["id"], "newest first")

	carol := e.register(t, "carol@x.com", "secret1")
	w = serve(t, e.router, request{method: http.MethodGet, target: "/messages?action=my", token: carol})
	require.JSONEq(t, `{"messages":[]}`, w.Body.String())
}
