package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/and161185/helpdesk/internal/model"
)

type sendBody struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type replyBody struct {
	MessageID int64  `json:"message_id"`
	Reply     string `json:"reply"`
}

type messageJSON struct {
	ID         int64      `json:"id"`
	UserEmail  *string    `json:"user_email,omitempty"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	AdminReply *string    `json:"admin_reply"`
	RepliedAt  *time.Time `json:"replied_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

type messagesResponse struct {
	Messages []messageJSON `json:"messages"`
}

func toMessagesResponse(ms []model.Message, withEmail bool) messagesResponse {
	out := make([]messageJSON, 0, len(ms))
	for _, m := range ms {
		j := messageJSON{
			ID:         m.ID,
			Subject:    m.Subject,
			Body:       m.Body,
			Status:     string(m.Status),
			AdminReply: m.AdminReply,
			RepliedAt:  m.RepliedAt,
			CreatedAt:  m.CreatedAt,
		}
		if withEmail {
			email := m.UserEmail
			j.UserEmail = &email
		}
		out = append(out, j)
	}
	return messagesResponse{Messages: out}
}

// handleMessages dispatches /messages by (method, action).
func (s *Server) handleMessages(c *gin.Context) {
	if preflight(c) {
		return
	}
	switch (route{c.Request.Method, c.Query("action")}) {
	case route{http.MethodPost, "send"}:
		s.send(c)
	case route{http.MethodGet, "my"}:
		s.listOwn(c)
	case route{http.MethodGet, "admin_list"}:
		s.listAll(c)
	case route{http.MethodPost, "admin_reply"}:
		s.reply(c)
	default:
		notFound(c)
	}
}

func (s *Server) send(c *gin.Context) {
	var in sendBody
	if err := readJSON(c, &in); err != nil {
		badBody(c)
		return
	}
	id, err := s.messages.Send(c.Request.Context(), identityPtr(c), in.Subject, in.Body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
}

func (s *Server) listOwn(c *gin.Context) {
	ms, err := s.messages.ListOwn(c.Request.Context(), identityPtr(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toMessagesResponse(ms, false))
}

func (s *Server) listAll(c *gin.Context) {
	ms, err := s.messages.ListAll(c.Request.Context(), identityPtr(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toMessagesResponse(ms, true))
}

func (s *Server) reply(c *gin.Context) {
	var in replyBody
	if err := readJSON(c, &in); err != nil {
		badBody(c)
		return
	}
	if err := s.messages.Reply(c.Request.Context(), identityPtr(c), in.MessageID, in.Reply); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
