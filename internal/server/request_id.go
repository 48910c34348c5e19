package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "mymovies_request_id"
)

// requestIDMiddleware tags every request with a correlation id, reusing the
// caller's X-Request-ID when one is supplied and minting a UUIDv7 otherwise.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			generated, err := uuid.NewV7()
			if err == nil {
				requestID = generated.String()
			}
		}
		if requestID != "" {
			c.Set(requestIDContextKey, requestID)
			c.Header(requestIDHeader, requestID)
		}
		c.Next()
	}
}
