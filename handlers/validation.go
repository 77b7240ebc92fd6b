package handlers

import (
	"aerograph/models"
	"aerograph/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ValidateRecords validates a JSON record or array of records as :kind.
// Query params: label, collection=true to force collection semantics.
func (h *Handler) ValidateRecords(c *gin.Context) {
	var payload any
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	collection, _ := strconv.ParseBool(c.Query("collection"))
	kind := models.EntityKind(c.Param("kind"))
	result, err := h.services.Validation.Validate(c.Request.Context(), kind, payload, c.Query("label"), collection)
	if err != nil {
		failFromError(c, "Validation failed", err)
		return
	}
	ok(c, result)
}

// SanitizeWorkflow returns a repaired copy of the posted workflow(s)
func (h *Handler) SanitizeWorkflow(c *gin.Context) {
	var payload any
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}
	ok(c, h.services.Validation.Sanitize(payload))
}

// CompareSchema diffs posted data against an expected field list
func (h *Handler) CompareSchema(c *gin.Context) {
	var req service.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	result, err := h.services.Validation.Compare(c.Request.Context(), req)
	if err != nil {
		failFromError(c, "Schema comparison failed", err)
		return
	}
	ok(c, result)
}
