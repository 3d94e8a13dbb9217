package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// requestID assigns every request a UUIDv4 and echoes it in the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if u, err := uuid.NewV4(); err == nil {
			id = u.String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// openCORS sends permissive CORS headers on requests without an Origin;
// cors.New handles the rest.
func openCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Origin") == "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader+", Authorization")
		}
		c.Next()
	}
}

// authenticate resolves the session token, if any, and stores the identity.
// Requests without a valid session continue anonymously.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		tok := sessionToken(c.Request)
		if tok == "" {
			c.Next()
			return
		}
		id, ok, err := s.sessions.Resolve(c.Request.Context(), tok)
		if err != nil {
			s.log.Error("resolve session", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
			s.internal(c)
			return
		}
		if ok {
			WithIdentity(c, id)
		}
		c.Next()
	}
}
