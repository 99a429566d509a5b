package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TraceKey gin 上下文中 trace id 的键，由 TraceMiddleware 写入
const TraceKey = "traceID"

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`              // 业务码
	Message string      `json:"message"`           // 提示信息
	Data    interface{} `json:"data"`              // 数据
	TraceID string      `json:"traceId,omitempty"` // 仅错误响应携带，便于对照日志
}

func write(c *gin.Context, status int, body Response) {
	c.JSON(status, body)
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Response{Code: CodeSuccess, Message: "success", Data: data})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, Response{Code: CodeSuccess, Message: "success", Data: data})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	write(c, httpCode, Response{
		Code:    errCode,
		Message: msg,
		TraceID: c.GetString(TraceKey),
	})
}
