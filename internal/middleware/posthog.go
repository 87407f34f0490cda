package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/transit_finance/internal/utils"
	"github.com/gin-gonic/gin"
)

// PosthogMiddleware reports successful mutating API calls (posting, reversing, paying...) to PostHog.
// Reads are not tracked.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/journal-entries/:entryID/post" -> "api_v1_journal-entries_post"
		segments := make([]string, 0, 6)
		for _, seg := range strings.Split(strings.Trim(c.FullPath(), "/"), "/") {
			if seg == "" || strings.HasPrefix(seg, ":") {
				continue
			}
			segments = append(segments, seg)
		}
		if len(segments) == 0 {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, p := range c.Params {
				params[p.Key] = p.Value
			}
			props["params"] = params
		}

		posthogClient.Enqueue(userID, strings.Join(segments, "_"), props)
	}
}
