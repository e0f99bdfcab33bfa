package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the single error body shape: {"error": "<message>"}.
// Status travels out-of-band in the HTTP status line.
type Response struct {
	Status int    `json:"-"`
	Error  string `json:"error"`
}

// AbortWithError records the original error on the context for the
// logging middleware and writes the public response body.
func AbortWithError(c *gin.Context, status int, err error, msg string) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status, Error: msg}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
