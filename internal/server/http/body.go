package httpserver

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// readJSON decodes the request body into dst. An empty body leaves dst untouched.
func readJSON(c *gin.Context, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return binding.JSON.BindBody(body, dst)
}
