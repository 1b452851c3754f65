package middleware

import (
	"fmt"
	"net/http"

	"github.com/dfryer1193/keta/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics logs a recovered panic and answers with a JSON 500.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}

		log.Error().
			Err(err).
			Str("requestId", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:     "internal server error",
			RequestID: GetRequestID(c),
		})
	}
}
