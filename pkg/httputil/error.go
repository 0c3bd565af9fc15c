package httputil

import (
	"github.com/gin-gonic/gin"
	"github.com/storeit-dev/storeit/internal/logging"
	"go.uber.org/zap"
)

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewError logs the cause and renders the JSON error body.
func NewError(ctx *gin.Context, status int, err error) {
	logging.FromContext(ctx.Request.Context()).Error("request failed",
		zap.Int("status", status), zap.Error(err))
	if status == 0 {
		status = 500
	}
	ctx.JSON(status, HTTPError{
		Code:    status,
		Message: err.Error(),
	})
}
