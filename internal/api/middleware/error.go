package middleware

import (
	"fmt"
	"net/http"

	"microgrid-sim/internal/api/models"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware turns panics into a JSON 500
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		message := "An unexpected error occurred"
		switch v := recovered.(type) {
		case string:
			message = v
		case error:
			message = v.Error()
		case fmt.Stringer:
			message = v.String()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: message,
			},
		})
	})
}
