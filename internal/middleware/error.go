package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mindwell/booking-api/internal/handler"
	apperrors "github.com/mindwell/booking-api/pkg/errors"
)

// ErrorHandler converts errors attached to the gin context into the
// standard response envelope. AppErrors keep their message and status;
// anything else becomes an opaque 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if appErr, ok := apperrors.As(err); ok {
			status := appErr.StatusCode()
			if status >= http.StatusInternalServerError {
				log.Error().Err(appErr.Err).Str("path", c.Request.URL.Path).Msg(appErr.Message)
			}
			c.JSON(status, handler.NewErrorResponse(appErr.Message))
			return
		}

		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
	}
}
