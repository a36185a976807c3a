package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"redflix-api/internal/core/apperr"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError 按错误分类生成响应；500 文案统一脱敏
func FromError(err error) (int, Resp) {
	status := StatusOf(apperr.KindOf(err))
	if status == CodeServerError {
		return status, Error(status, "")
	}
	return status, Error(status, apperr.Message(err))
}

func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, OK(data))
}

// Abort 记录原始错误供访问日志输出，然后中止请求
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := FromError(err)
	c.AbortWithStatusJSON(status, body)
}
