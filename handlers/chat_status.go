package handlers

import (
	"net/http"
	"time"

	"tripwise/services/ledger"

	"github.com/gin-gonic/gin"
)

// ChatStatusHandler serves the "show your work" view over the call
// ledger.
type ChatStatusHandler struct {
	Ledger *ledger.Ledger
}

// NewChatStatusHandler builds the status endpoint handler.
func NewChatStatusHandler(l *ledger.Ledger) *ChatStatusHandler {
	return &ChatStatusHandler{Ledger: l}
}

// Status handles GET /api/chat-status. With filter=true (or 1), the
// recorded calls are narrowed to those relevant to the query parameter,
// falling back to the latest user query.
func (h *ChatStatusHandler) Status(c *gin.Context) {
	filterParam := c.Query("filter")
	filter := filterParam == "true" || filterParam == "1"

	calls := h.Ledger.Query(filter, c.Query("query"))

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"apiCalls":  calls,
		"userQuery": h.Ledger.LatestUserQuery(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
