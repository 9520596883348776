package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/gin-gonic/gin"
)

// Every response uses the same envelope so clients can branch on `success`
// without inspecting status codes.
func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{
		"success": false,
		"message": err.Error(),
		"data":    nil,
	})
}

func statusForError(err error) int {
	switch {
	case utils.IsNotFound(err):
		return http.StatusNotFound
	case utils.IsInvalidState(err):
		return http.StatusConflict
	case utils.IsValidation(err):
		return http.StatusBadRequest
	case utils.IsUnsupported(err):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
