package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends the {status, message, data} envelope every handler answers with
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends the error envelope. kind names the rejection category
// ("validation", "conflict", ...) and is left out when empty.
func JSONError(c *gin.Context, status int, kind string, err error, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	}
	if kind != "" {
		body["kind"] = kind
	}
	c.JSON(status, body)
}
