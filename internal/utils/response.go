package utils

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope for API endpoints.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success returns a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage returns a 200 with a message and data.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(200, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error returns a failure envelope with the given status code.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success: false,
		Message: message,
	})
}

// BadRequest returns a 400 failure.
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized returns a 401 failure.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	Error(c, 401, message)
}

// NotFound returns a 404 failure.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "resource not found"
	}
	Error(c, 404, message)
}

// InternalServerError returns a 500 failure.
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	Error(c, 500, message)
}
