package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code int         `json:"code"`           // 业务状态码
	Msg  string      `json:"msg"`            // 提示信息
	Data interface{} `json:"data,omitempty"` // 数据载荷
}

// 业务状态码定义
const (
	CodeSuccess   = 200
	CodeCreated   = 201
	CodeNoContent = 204

	CodeBadRequest = 400
	CodeNotFound   = 404

	CodeInternalError  = 500
	CodeBadGateway     = 502
	CodeGatewayTimeout = 504
)

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: CodeSuccess,
		Msg:  MsgOK,
		Data: data,
	})
}

// SuccessWithMsg 成功响应（自定义消息）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: CodeSuccess,
		Msg:  msg,
		Data: data,
	})
}

// CreatedWithMsg 创建成功响应（201）
func CreatedWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code: CodeCreated,
		Msg:  msg,
		Data: data,
	})
}

// NoContent 无内容响应（204），通常用于删除成功
func NoContent(c *gin.Context) {
	c.Status(CodeNoContent)
}

// BadRequest 请求参数错误（400）
func BadRequest(c *gin.Context, msg string) {
	Error(c, CodeBadRequest, msg)
}

// NotFound 资源不存在错误（404）
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, msg)
}

// InternalError 服务内部错误（500）
func InternalError(c *gin.Context, msg string) {
	Error(c, CodeInternalError, msg)
}

// BadGateway 后端调用失败（502）
func BadGateway(c *gin.Context, msg string) {
	Error(c, CodeBadGateway, msg)
}

// GatewayTimeout 后端超时（504）
func GatewayTimeout(c *gin.Context, msg string) {
	Error(c, CodeGatewayTimeout, msg)
}

// Error 通用错误响应，业务状态码与 HTTP 状态码一致
func Error(c *gin.Context, httpCode int, msg string) {
	c.JSON(httpCode, Response{
		Code: httpCode,
		Msg:  msg,
	})
}
