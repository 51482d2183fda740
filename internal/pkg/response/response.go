package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studiobook/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// DomainError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is reported as a transport-level failure.
func DomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		Error(c, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrConflict):
		Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrCancelled):
		Error(c, 499, "CANCELLED", err.Error())
	default:
		Error(c, http.StatusBadGateway, "TRANSPORT", err.Error())
	}
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
