package handlers

import (
	"aerograph/models"
	"aerograph/service"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ListErrorLogs returns entries matching the query filter, newest first
func (h *Handler) ListErrorLogs(c *gin.Context) {
	var q service.LogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid query", err.Error())
		return
	}

	logs, err := h.services.Logs.List(q)
	if err != nil {
		failFromError(c, "Failed to list error logs", err)
		return
	}
	ok(c, logs)
}

// ReportError records an error reported by a client
func (h *Handler) ReportError(c *gin.Context) {
	var req models.ClientErrorReport
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	entry, err := h.services.Logs.Report(c.Request.Context(), req)
	if err != nil {
		failFromError(c, "Failed to record error", err)
		return
	}
	ok(c, entry)
}

// ClearErrorLogs wipes the buffer
func (h *Handler) ClearErrorLogs(c *gin.Context) {
	h.services.Logs.Clear()
	ok(c, gin.H{"cleared": true})
}

// ErrorLogStats summarizes the buffer
func (h *Handler) ErrorLogStats(c *gin.Context) {
	ok(c, h.services.Logs.Stats())
}

// ExportErrorLogs downloads the buffer as a JSON file
func (h *Handler) ExportErrorLogs(c *gin.Context) {
	out, err := h.services.Logs.Export()
	if err != nil {
		failFromError(c, "Failed to export error logs", err)
		return
	}
	filename := fmt.Sprintf("error-logs-%s.json", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
}
