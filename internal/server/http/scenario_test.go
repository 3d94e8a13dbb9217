package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenario_RegisterSendList(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, Options{})

	w := serve(t, e.router, request{method: http.MethodPost, target: "/auth?action=register",
		body: map[string]string{"email": "u@x.com", "password": "abcdef"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reg := decode(t, w)
	t1 := reg["token"].(string)
	require.NotEmpty(t, t1)
	require.Equal(t, "u@x.com", reg["email"])
	require.Equal(t, false, reg["is_admin"])

	w = serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=send", token: t1,
		body: map[string]string{"subject": "Hi", "body": "Help"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{"ok":true,"id":1}`, w.Body.String())

	w = serve(t, e.router, request{method: http.MethodGet, target: "/messages?action=my", token: t1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	msgs := decode(t, w)["messages"].([]any)
	require.Len(t, msgs, 1)
	m := msgs[0].(map[string]any)
	require.Equal(t, float64(1), m["id"])
	require.Equal(t, "Hi", m["subject"])
	require.Equal(t, "Help", m["body"])
	require.Equal(t, "pending", m["status"])
	require.Contains(t, m, "admin_reply")
	require.Nil(t, m["admin_reply"])
	require.Contains(t, m, "replied_at")
	require.Nil(t, m["replied_at"])
	require.NotEmpty(t, m["created_at"])
	require.NotContains(t, m, "user_email")

	sent := e.drain(t)
	require.Len(t, sent, 1)
	require.Equal(t, "new_message", sent[0].Kind)
}

func TestScenario_AdminReply(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, Options{})

	t1 := e.register(t, "u@x.com", "abcdef")
	w := serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=send", token: t1,
		body: map[string]string{"subject": "Hi", "body": "Help"}})
	require.Equal(t, http.StatusOK, w.Code)

	e.register(t, "admin@x.com", "adminpw")
	require.True(t, e.store.SetAdmin("admin@x.com", true))
	ta := e.login(t, "admin@x.com", "adminpw")

	w = serve(t, e.router, request{method: http.MethodGet, target: "/messages?action=admin_list", token: ta})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	all := decode(t, w)["messages"].([]any)
	require.Len(t, all, 1)
	require.Equal(t, "u@x.com", all[0].(map[string]any)["user_email"])

	w = serve(t, e.router, request{method: http.MethodPost, target: "/messages?action=admin_reply", token: ta,
		body: map[string]any{"message_id": 1, "reply": "Fixed"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = serve(t, e.router, request{method: http.MethodGet, target: "/messages?action=my", token: t1})
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)["messages"].([]any)[0].(map[string]any)
	require.Equal(t, "answered", m["status"])
	require.Equal(t, "Fixed", m["admin_reply"])
	require.NotNil(t, m["replied_at"])

	sent := e.drain(t)
	require.Len(t, sent, 2)
	require.Equal(t, "reply", sent[1].Kind)
	require.Equal(t, "u@x.com", sent[1].Message.UserEmail)
}
