package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the standard success body: {"success":true,"data":{...}}.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK wraps the payload in the success envelope and writes 200 OK.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, Envelope{Success: true, Data: data})
}
