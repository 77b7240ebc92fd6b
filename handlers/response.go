package handlers

import (
	"aerograph/core"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every JSON endpoint returns
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	CodeOK             = "OK"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternal       = "INTERNAL_ERROR"
)

func respond(c *gin.Context, status int, code, message string, data any) {
	c.JSON(status, Response{Code: code, Message: message, Data: data})
}

func ok(c *gin.Context, data any) {
	respond(c, http.StatusOK, CodeOK, "OK", data)
}

func fail(c *gin.Context, status int, code, message string, detail any) {
	// Keep the envelope stable: free-form details go into `data.detail`.
	payload := gin.H{}
	if detail != nil {
		payload["detail"] = detail
	}
	respond(c, status, code, message, payload)
}

// failFromError maps service errors onto status codes
func failFromError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidRequest):
		fail(c, http.StatusBadRequest, CodeInvalidRequest, message, err.Error())
	case errors.Is(err, core.ErrUnknownKind):
		fail(c, http.StatusNotFound, CodeNotFound, message, err.Error())
	default:
		fail(c, http.StatusInternalServerError, CodeInternal, message, err.Error())
	}
}
