package util

import (
	"log/slog"
	"net/http"

	"rentexpress/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Response is the data object of a success envelope.
type Response map[string]interface{}

// Business error codes carried in the envelope.
const (
	CodeOK            = 0
	CodeInvalidParam  = 40001
	CodeAuth          = 40101
	CodeForbidden     = 40301
	CodeNotFound      = 40401
	CodeConflict      = 40901
	CodeServerErr     = 50001
	CodeEmailDelivery = 50201
)

// Success writes {"code":0,"data":...}.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Created is Success with 201.
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes an error envelope with an explicit status, code and kind.
func Error(c *gin.Context, httpStatus int, code int, kind apperr.Kind, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"kind":    kind,
		"message": msg,
	})
}

// Status maps an error kind to its HTTP status and envelope code.
func Status(kind apperr.Kind) (int, int) {
	switch kind {
	case apperr.KindAuthentication:
		return http.StatusUnauthorized, CodeAuth
	case apperr.KindForbidden:
		return http.StatusForbidden, CodeForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest, CodeInvalidParam
	case apperr.KindConflict:
		return http.StatusConflict, CodeConflict
	case apperr.KindEmailDelivery:
		return http.StatusBadGateway, CodeEmailDelivery
	}
	return http.StatusInternalServerError, CodeServerErr
}

// Fail renders err as an envelope. Unclassified errors are logged with
// the request context and answered with a generic message.
func Fail(c *gin.Context, op string, err error, attrs ...any) {
	kind := apperr.KindOf(err)
	status, code := Status(kind)
	if kind == apperr.KindInternal {
		args := append([]any{"op", op, "method", c.Request.Method, "path", c.FullPath(), "err", err}, attrs...)
		if id := c.GetString(ActorIDKey); id != "" {
			args = append(args, "actor_id", id)
		}
		slog.ErrorContext(c.Request.Context(), "request failed", args...)
	}
	Error(c, status, code, kind, apperr.MessageOf(err))
}

// ActorIDKey is the gin context key holding the authenticated actor id,
// used for log correlation.
const ActorIDKey = "actorID"
