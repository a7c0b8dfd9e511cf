// internal/pkg/response/response.go
package response

import (
	"net/http"

	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// Abort first so later handlers in the chain never write.
	c.Abort()

	resp := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		resp.Error = err.Error()
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	c.JSON(code, resp)
}

// FromError picks the status code from the sentinel wrapped in err. Server-side
// failures are recorded on the context for the request log and not echoed back.
func FromError(c *gin.Context, message string, err error) {
	status := xerrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		Error(c, status, message, nil)
		return
	}
	Error(c, status, message, err)
}

// Acknowledge answers a webhook delivery. The body is fixed so the provider never
// sees internal failures.
func Acknowledge(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}
