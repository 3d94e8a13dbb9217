package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/and161185/helpdesk/internal/model"
)

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type meResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func toAuthResponse(r model.AuthResult) authResponse {
	return authResponse{Token: r.Token, Email: r.Email, IsAdmin: r.IsAdmin}
}

// handleAuth dispatches /auth by (method, action).
func (s *Server) handleAuth(c *gin.Context) {
	if preflight(c) {
		return
	}
	switch (route{c.Request.Method, c.Query("action")}) {
	case route{http.MethodPost, "register"}:
		s.register(c)
	case route{http.MethodPost, "login"}:
		s.login(c)
	case route{http.MethodPost, "logout"}:
		s.logout(c)
	case route{http.MethodGet, "me"}:
		s.me(c)
	default:
		notFound(c)
	}
}

type route struct {
	method string
	action string
}

func (s *Server) register(c *gin.Context) {
	var in credentialsBody
	if err := readJSON(c, &in); err != nil {
		badBody(c)
		return
	}
	res, err := s.auth.Register(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuthResponse(res))
}

func (s *Server) login(c *gin.Context) {
	var in credentialsBody
	if err := readJSON(c, &in); err != nil {
		badBody(c)
		return
	}
	res, err := s.auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuthResponse(res))
}

func (s *Server) logout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), sessionToken(c.Request)); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) me(c *gin.Context) {
	id, err := s.auth.Me(c.Request.Context(), sessionToken(c.Request))
	if err != nil {
		s.fail(c, err)
		return
	}
	WithIdentity(c, id)
	c.JSON(http.StatusOK, meResponse{ID: id.UserID, Email: id.Email, IsAdmin: id.IsAdmin})
}
