package controllers

import (
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// ReturnController 处理分配记录与归还流程
type ReturnController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewReturnController 创建归还控制器
func NewReturnController(ctx *gin.Context, container *container.ServiceContainer) *ReturnController {
	return &ReturnController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleReturnFunc 返回一个处理归还请求的Gin处理函数
func HandleReturnFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewReturnController(ctx, container)

		switch method {
		case "myAssignments":
			controller.MyAssignments()
		case "initiate":
			controller.Initiate()
		case "listHR":
			controller.ListHR()
		case "complete":
			controller.Complete()
		case "reject":
			controller.Reject()
		default:
			unknownMethod(ctx)
		}
	}
}

func (c *ReturnController) service() services.InterfaceReturnService {
	return c.Container.GetService("return").(services.InterfaceReturnService)
}

// MyAssignments 员工名下的资产
// @Summary      My assets
// @Tags         Return
// @Produce      json
// @Param        page      query int    false "Zero-based page"
// @Param        page_size query int    false "Page size"
// @Param        search    query string false "Asset name search"
// @Param        type      query string false "returnable or non-returnable"
// @Param        status    query string false "assigned, return_pending or returned"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.PageResult[models.Assignment]}
// @Failure      403  {object}  ErrorResponse
// @Router       /assignments/mine [get]
func (c *ReturnController) MyAssignments() {
	var query services.AssignmentQuery
	if !bindQuery(c.Ctx, &query) {
		return
	}
	page, err := c.service().ListMyAssignments(c.Ctx.Request.Context(), session(c.Ctx), query)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, page)
}

// Initiate 发起归还
// @Summary      Initiate return
// @Tags         Return
// @Produce      json
// @Param        id path int true "Assignment ID"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=services.ReturnResult}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /assignments/{id}/return [post]
func (c *ReturnController) Initiate() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	result, err := c.service().InitiateReturn(c.Ctx.Request.Context(), session(c.Ctx), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, result)
}

// ListHR HR待处理的归还
// @Summary      HR returns
// @Tags         Return
// @Produce      json
// @Param        page      query int    false "Zero-based page"
// @Param        page_size query int    false "Page size"
// @Param        status    query string false "pending, completed or rejected"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.PageResult[models.ReturnRequest]}
// @Failure      403  {object}  ErrorResponse
// @Router       /hr/returns [get]
func (c *ReturnController) ListHR() {
	var query services.ReturnQuery
	if !bindQuery(c.Ctx, &query) {
		return
	}
	page, err := c.service().ListHRReturns(c.Ctx.Request.Context(), session(c.Ctx), query)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, page)
}

// Complete 确认归还并恢复库存
// @Summary      Complete return
// @Tags         Return
// @Produce      json
// @Param        id path int true "Return ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.ReturnResult}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /hr/returns/{id}/complete [post]
func (c *ReturnController) Complete() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	result, err := c.service().CompleteReturn(c.Ctx.Request.Context(), session(c.Ctx), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, result)
}

// Reject 拒绝归还，资产仍归员工
// @Summary      Reject return
// @Tags         Return
// @Produce      json
// @Param        id path int true "Return ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.ReturnResult}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /hr/returns/{id}/reject [post]
func (c *ReturnController) Reject() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	result, err := c.service().RejectReturn(c.Ctx.Request.Context(), session(c.Ctx), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, result)
}
