package controllers

import (
	"strconv"

	"assetverse-http-service/internal/app/middleware"
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/error/code"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"101002"`
	Message string      `json:"message" example:"invalid email or password"`
	Data    interface{} `json:"data"`
}

// SuccessResponse 表示成功响应
type SuccessResponse struct {
	Code    int         `json:"code" example:"100000"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data"`
}

// parseID 解析路径中的ID参数，失败时直接写入错误响应
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.ParamError(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindQuery 绑定查询参数，失败时直接写入错误响应
func bindQuery(ctx *gin.Context, dest interface{}) bool {
	if err := ctx.ShouldBindQuery(dest); err != nil {
		response.FailWithMessage(ctx, code.ErrBind, "invalid query parameters: "+err.Error(), nil)
		return false
	}
	return true
}

// bindJSON 绑定请求体，失败时直接写入错误响应
func bindJSON(ctx *gin.Context, dest interface{}) bool {
	if err := ctx.ShouldBindJSON(dest); err != nil {
		response.FailWithMessage(ctx, code.ErrBind, "invalid request body: "+err.Error(), nil)
		return false
	}
	return true
}

func session(ctx *gin.Context) services.Session {
	return middleware.CurrentSession(ctx)
}

func unknownMethod(ctx *gin.Context) {
	response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
}
