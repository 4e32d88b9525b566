package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/error/code"
	"assetverse-http-service/pkg/logger"
)

// Response 定义统一的响应格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, errorCode int, data interface{}) {
	httpStatus := code.GetStatus(errorCode)
	message := code.GetMessage(errorCode)

	c.JSON(httpStatus, Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// FailWithMessage 失败响应（自定义消息）
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	httpStatus := code.GetStatus(errorCode)

	c.JSON(httpStatus, Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// FailWithError 根据业务错误选择错误码。未知错误只记录日志，不向客户端暴露细节。
func FailWithError(c *gin.Context, err error) {
	errorCode := CodeFromError(err)
	if code.GetStatus(errorCode) >= http.StatusInternalServerError {
		logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		Fail(c, errorCode, nil)
		return
	}
	FailWithMessage(c, errorCode, err.Error(), nil)
}

// ParamError 参数错误响应
func ParamError(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrValidation)
	}
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// ServerError 服务器错误响应
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrRecordNotFound)
	}
	FailWithMessage(c, code.ErrRecordNotFound, message, nil)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context) {
	Fail(c, code.ErrTokenInvalid, nil)
}

var errorCodes = []struct {
	err  error
	code int
}{
	{services.ErrInvalidInput, code.ErrValidation},
	{services.ErrUserNotFound, code.ErrUserNotFound},
	{services.ErrUserAlreadyExists, code.ErrUserAlreadyExist},
	{services.ErrInvalidCredentials, code.ErrUserPasswordIncorrect},
	{services.ErrRoleUnresolved, code.ErrRoleUnresolved},
	{services.ErrForbidden, code.ErrForbidden},
	{services.ErrAssetNotFound, code.ErrAssetNotFound},
	{services.ErrOutOfStock, code.ErrAssetOutOfStock},
	{services.ErrNotReturnable, code.ErrAssetNotReturnable},
	{services.ErrAssetInUse, code.ErrAssetInUse},
	{services.ErrRequestNotFound, code.ErrRequestNotFound},
	{services.ErrPreconditionFailed, code.ErrPreconditionFailed},
	{services.ErrConflict, code.ErrConcurrentUpdate},
	{services.ErrAssignmentNotFound, code.ErrAssignmentNotFound},
	{services.ErrReturnNotFound, code.ErrReturnNotFound},
	{services.ErrAffiliationNotFound, code.ErrAffiliationNotFound},
	{services.ErrLimitReached, code.ErrLimitReached},
	{services.ErrPackageNotFound, code.ErrPackageNotFound},
	{services.ErrCheckoutNotFound, code.ErrCheckoutNotFound},
	{services.ErrCheckoutInvalid, code.ErrCheckoutInvalid},
	{context.DeadlineExceeded, code.ErrTimeout},
}

// CodeFromError 将业务错误映射为错误码
func CodeFromError(err error) int {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return code.ErrUnknown
}
