package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/erp_finance_ledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// posthogEventSentKey marks a request whose handler already sent its own event.
const posthogEventSentKey = "posthogEventSent"

// PosthogMiddleware tracks successful state-changing API calls with PostHog.
// Reads and requests whose handler called PosthogEvent are not tracked.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest || c.GetBool(posthogEventSentKey) {
			return
		}
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/transactions/:transactionID/void" -> "api_v1_transactions_transactionID_void"
		eventName := strings.TrimPrefix(c.FullPath(), "/")
		eventName = strings.NewReplacer("/", "_", ":", "").Replace(eventName)
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		if id := c.Param("transactionID"); id != "" {
			props["transaction_id"] = id
		}
		posthogClient.Enqueue(userID, eventName, props)
	}
}

// PosthogEvent sends a custom event from a handler.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, eventName string, properties map[string]any) {
	if posthogClient == nil || !posthogClient.IsInitialized() {
		return
	}
	userID, exists := GetUserIDFromContext(c)
	if !exists {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["path"] = c.Request.URL.Path
	posthogClient.Enqueue(userID, eventName, properties)
	c.Set(posthogEventSentKey, true)
}
