package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yudapratama/go-auth-api/pkg/response"
)

// Recovery converts panics into a generic 500 envelope, logging the fault with
// request context. Stack detail reaches the client only outside production.
func Recovery(logger *logrus.Logger, production bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.GetString("real_ip"),
			"user_agent": c.Request.UserAgent(),
			"request_id": c.GetString("request_id"),
		}).Errorf("panic recovered: %v", recovered)

		body := &response.ErrorBody{Message: "Server Error", Type: "ServerError"}
		if !production {
			body.Stack = fmt.Sprintf("%v", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Envelope{Success: false, Error: body})
	})
}
