package response

import (
	"net/http"

	"redflix-api/internal/core/apperr"
)

// 业务码直接沿用 HTTP 语义；成功为 0
const (
	CodeOK           = 0
	CodeBadRequest   = http.StatusBadRequest
	CodeUnauthorized = http.StatusUnauthorized
	CodeForbidden    = http.StatusForbidden
	CodeNotFound     = http.StatusNotFound
	CodeConflict     = http.StatusConflict
	CodeServerError  = http.StatusInternalServerError
)

// MsgUnexpected 500 对外统一文案，细节只进日志
const MsgUnexpected = "Oops, an unexpected error happened. If the problem persists, contact an administrator."

var CodeMsgMap = map[int]string{
	CodeOK:           "OK",
	CodeBadRequest:   "Bad Request",
	CodeUnauthorized: "Unauthorized",
	CodeForbidden:    "Forbidden",
	CodeNotFound:     "Not Found",
	CodeConflict:     "Conflict",
	CodeServerError:  MsgUnexpected,
}

// StatusOf Forbidden 也回 401，和 Unauthorized 不区分
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindBadRequest:
		return CodeBadRequest
	case apperr.KindUnauthorized, apperr.KindForbidden:
		return CodeUnauthorized
	case apperr.KindNotFound:
		return CodeNotFound
	case apperr.KindConflict:
		return CodeConflict
	default:
		return CodeServerError
	}
}
