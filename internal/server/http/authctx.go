package httpserver

import (
	"github.com/gin-gonic/gin"

	"github.com/and161185/helpdesk/internal/model"
)

const identityKey = "helpdesk.identity"

// WithIdentity stores the authenticated identity in the request context.
func WithIdentity(c *gin.Context, id model.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom fetches the identity stored by WithIdentity.
func IdentityFrom(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok
}

// identityPtr returns nil for anonymous requests.
func identityPtr(c *gin.Context) *model.Identity {
	id, ok := IdentityFrom(c)
	if !ok {
		return nil
	}
	return &id
}
