package controllers

import (
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// ApprovalController 处理HR的审批操作
type ApprovalController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewApprovalController 创建审批控制器
func NewApprovalController(ctx *gin.Context, container *container.ServiceContainer) *ApprovalController {
	return &ApprovalController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleApprovalFunc 返回一个处理审批请求的Gin处理函数
func HandleApprovalFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewApprovalController(ctx, container)

		switch method {
		case "approve":
			controller.Approve()
		case "reject":
			controller.Reject()
		default:
			unknownMethod(ctx)
		}
	}
}

// Approve 批准申请
// @Summary      Approve request
// @Description  Affiliates the employee if needed, issues one unit and creates the assignment atomically. Repeating an approval returns the existing result.
// @Tags         Approval
// @Produce      json
// @Param        id path int true "Request ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.ApprovalResult}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /hr/requests/{id}/approve [post]
func (c *ApprovalController) Approve() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	approvalService := c.Container.GetService("approval").(services.InterfaceApprovalService)
	result, err := approvalService.Approve(c.Ctx.Request.Context(), session(c.Ctx), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, result)
}

// Reject 拒绝申请
// @Summary      Reject request
// @Tags         Approval
// @Produce      json
// @Param        id path int true "Request ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.AssetRequest}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /hr/requests/{id}/reject [post]
func (c *ApprovalController) Reject() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	approvalService := c.Container.GetService("approval").(services.InterfaceApprovalService)
	request, err := approvalService.Reject(c.Ctx.Request.Context(), session(c.Ctx), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, request)
}
