package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/civix/backend/internal/notify"
)

// @Summary List admin notifications
// @Tags notifications
// @Produce json
// @Param read query bool false "Filter by read state"
// @Param type query string false "Filter by notification type"
// @Param priority query string false "Filter by priority"
// @Param actionable query bool false "Filter by actionable flag"
// @Success 200 {object} map[string]any
// @Router /api/notifications [get]
func (h *Handler) NotificationsList(c *gin.Context) {
	var filter notify.ListFilter
	if v := c.Query("read"); v != "" {
		read, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "read must be a boolean", nil)
			return
		}
		filter.Read = &read
	}
	if v := c.Query("actionable"); v != "" {
		actionable, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "actionable must be a boolean", nil)
			return
		}
		filter.Actionable = &actionable
	}
	filter.Type = c.Query("type")
	filter.Priority = c.Query("priority")

	items := h.Inbox.List(filter)
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) NotificationRead(c *gin.Context) {
	if !h.Inbox.MarkRead(c.Param("id")) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) NotificationsReadAll(c *gin.Context) {
	marked := h.Inbox.MarkAllRead()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "marked": marked})
}

func (h *Handler) NotificationDelete(c *gin.Context) {
	if !h.Inbox.Remove(c.Param("id")) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
