package httpserver

import (
	"net/http"
	"strings"
)

// TokenHeader is the primary session token header.
const TokenHeader = "X-Session-Token"

// sessionToken extracts the session token from X-Session-Token or,
// failing that, from "Authorization: Bearer <token>".
func sessionToken(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}
	for _, v := range r.Header.Values("Authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			if t := strings.TrimSpace(v[7:]); t != "" {
				return t
			}
		}
	}
	return ""
}
