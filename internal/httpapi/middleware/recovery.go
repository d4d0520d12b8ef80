package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"llamachat/internal/common"
)

// Recovery converts panics into 500 envelopes carrying the panic message.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"path", c.Request.URL.Path,
					"panic", fmt.Sprint(r))
				common.Fail(c, http.StatusInternalServerError, 50000, fmt.Sprint(r))
				c.Abort()
			}
		}()
		c.Next()
	}
}
