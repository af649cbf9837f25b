package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/apperr"
)

// OK writes {"success": true, ...fields}.
func OK(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Fail writes {"error": msg, "code": code} and aborts the chain.
func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{
		"error": msg,
		"code":  code,
	})
}

// FailErr maps a service error onto the envelope. fallback is used for
// server-side failures so that internal detail is never echoed.
func FailErr(c *gin.Context, err error, fallback string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Fail(c, status, status*100, apperr.PublicMessage(err, fallback))
}
