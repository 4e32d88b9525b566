package controllers

import (
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceRequestController 定义资产申请控制器接口
type InterfaceRequestController interface {
	Submit()
	Mine()
	Get()
	Cancel()
	ListHR()
}

// RequestController 处理资产申请
type RequestController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewRequestController 创建资产申请控制器
func NewRequestController(ctx *gin.Context, container *container.ServiceContainer) *RequestController {
	return &RequestController{
		Ctx:       ctx,
		Container: container,
	}
}

// SubmitRequestRequest 提交申请的请求体
type SubmitRequestRequest struct {
	AssetID uint   `json:"asset_id" binding:"required" example:"1"`
	Note    string `json:"note" example:"Need a laptop for onboarding"`
}

// HandleRequestFunc 返回一个处理资产申请的Gin处理函数
func HandleRequestFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRequestController(ctx, container)

		switch method {
		case "submit":
			controller.Submit()
		case "mine":
			controller.Mine()
		case "get":
			controller.Get()
		case "cancel":
			controller.Cancel()
		case "listHR":
			controller.ListHR()
		default:
			unknownMethod(ctx)
		}
	}
}

func (c *RequestController) service() services.InterfaceRequestService {
	return c.Container.GetService("request").(services.InterfaceRequestService)
}

// Submit 提交资产申请
// @Summary      Submit request
// @Description  Request an asset from the company that owns it
// @Tags         Request
// @Accept       json
// @Produce      json
// @Param        request body SubmitRequestRequest true "Asset request"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=models.AssetRequest}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests [post]
func (c *RequestController) Submit() {
	var req SubmitRequestRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}
	request, err := c.service().SubmitRequest(c.Ctx.Request.Context(), session(c.Ctx), req.AssetID, req.Note)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, request)
}

// Mine 当前用户的申请
// @Summary      My requests
// @Tags         Request
// @Produce      json
// @Param        page      query int    false "Zero-based page"
// @Param        page_size query int    false "Page size"
// @Param        status    query string false "pending, approved, rejected or cancelled"
// @Param        search    query string false "Asset name search"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.PageResult[models.AssetRequest]}
// @Router       /requests/mine [get]
func (c *RequestController) Mine() {
	var query services.RequestQuery
	if !bindQuery(c.Ctx, &query) {
		return
	}
	page, err := c.service().ListMyRequests(c.Ctx.Request.Context(), session(c.Ctx), query)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, page)
}

// Get 申请详情，申请人或所属HR可见
// @Summary      Request detail
// @Tags         Request
// @Produce      json
// @Param        id path int true "Request ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.AssetRequest}
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id} [get]
func (c *RequestController) Get() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	request, err := c.service().GetRequest(c.Ctx.Request.Context(), session(c.Ctx), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, request)
}

// Cancel 撤回待审批的申请
// @Summary      Cancel request
// @Tags         Request
// @Produce      json
// @Param        id path int true "Request ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.AssetRequest}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests/{id}/cancel [post]
func (c *RequestController) Cancel() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	request, err := c.service().CancelRequest(c.Ctx.Request.Context(), session(c.Ctx), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, request)
}

// ListHR HR收到的申请
// @Summary      HR requests
// @Tags         Request
// @Produce      json
// @Param        page      query int    false "Zero-based page"
// @Param        page_size query int    false "Page size"
// @Param        status    query string false "Request status"
// @Param        search    query string false "Asset or requester search"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.PageResult[models.AssetRequest]}
// @Failure      403  {object}  ErrorResponse
// @Router       /hr/requests [get]
func (c *RequestController) ListHR() {
	var query services.RequestQuery
	if !bindQuery(c.Ctx, &query) {
		return
	}
	page, err := c.service().ListHRRequests(c.Ctx.Request.Context(), session(c.Ctx), query)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, page)
}
