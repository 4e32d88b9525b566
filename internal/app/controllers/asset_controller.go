package controllers

import (
	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceAssetController 定义资产控制器接口
type InterfaceAssetController interface {
	List()
	Get()
	ListHR()
	Create()
	Update()
	Delete()
}

// AssetController 处理资产目录与库存请求
type AssetController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAssetController 创建资产控制器
func NewAssetController(ctx *gin.Context, container *container.ServiceContainer) *AssetController {
	return &AssetController{
		Ctx:       ctx,
		Container: container,
	}
}

// AssetRequest 创建或更新资产的请求
type AssetRequest struct {
	Name     string           `json:"name" binding:"required" example:"MacBook Pro"`
	Type     models.AssetType `json:"type" binding:"required" example:"returnable"`
	PhotoURL string           `json:"photo_url" example:"https://example.com/mbp.png"`
	Quantity int              `json:"quantity" example:"5"`
}

func (r AssetRequest) input() services.AssetInput {
	return services.AssetInput{Name: r.Name, Type: r.Type, PhotoURL: r.PhotoURL, Quantity: r.Quantity}
}

// HandleAssetFunc 返回一个处理资产请求的Gin处理函数
func HandleAssetFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAssetController(ctx, container)

		switch method {
		case "list":
			controller.List()
		case "get":
			controller.Get()
		case "listHR":
			controller.ListHR()
		case "create":
			controller.Create()
		case "update":
			controller.Update()
		case "delete":
			controller.Delete()
		default:
			unknownMethod(ctx)
		}
	}
}

func (c *AssetController) service() services.InterfaceAssetService {
	return c.Container.GetService("asset").(services.InterfaceAssetService)
}

// List 资产目录
// @Summary      Asset catalog
// @Description  Paginated asset catalog. Filters apply before pagination; page is zero based.
// @Tags         Asset
// @Produce      json
// @Param        page      query int    false "Zero-based page"
// @Param        page_size query int    false "Page size, default 6"
// @Param        search    query string false "Case-insensitive name search"
// @Param        type      query string false "returnable or non-returnable"
// @Param        company   query string false "Company name"
// @Param        available query bool   false "Only assets in stock"
// @Success      200  {object}  SuccessResponse{data=models.PageResult[models.Asset]}
// @Failure      400  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /assets [get]
func (c *AssetController) List() {
	var query services.AssetQuery
	if !bindQuery(c.Ctx, &query) {
		return
	}
	query.OwnerEmail = ""

	page, err := c.service().ListAssets(c.Ctx.Request.Context(), query)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, page)
}

// Get 资产详情
// @Summary      Asset detail
// @Tags         Asset
// @Produce      json
// @Param        id path int true "Asset ID"
// @Success      200  {object}  SuccessResponse{data=models.Asset}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /assets/{id} [get]
func (c *AssetController) Get() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	asset, err := c.service().GetAsset(c.Ctx.Request.Context(), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, asset)
}

// ListHR HR自己的资产库存
// @Summary      HR asset inventory
// @Tags         Asset
// @Produce      json
// @Param        page      query int    false "Zero-based page"
// @Param        page_size query int    false "Page size"
// @Param        search    query string false "Name search"
// @Param        type      query string false "returnable or non-returnable"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.PageResult[models.Asset]}
// @Failure      403  {object}  ErrorResponse
// @Router       /hr/assets [get]
func (c *AssetController) ListHR() {
	var query services.AssetQuery
	if !bindQuery(c.Ctx, &query) {
		return
	}
	query.OwnerEmail = session(c.Ctx).Email

	page, err := c.service().ListAssets(c.Ctx.Request.Context(), query)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, page)
}

// Create 添加资产
// @Summary      Add asset
// @Tags         Asset
// @Accept       json
// @Produce      json
// @Param        request body AssetRequest true "Asset"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=models.Asset}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /hr/assets [post]
func (c *AssetController) Create() {
	var req AssetRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}
	asset, err := c.service().CreateAsset(c.Ctx.Request.Context(), session(c.Ctx), req.input())
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, asset)
}

// Update 更新资产
// @Summary      Update asset
// @Description  Issued units stay issued; quantity cannot drop below them.
// @Tags         Asset
// @Accept       json
// @Produce      json
// @Param        id      path int          true "Asset ID"
// @Param        request body AssetRequest true "Asset"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.Asset}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /hr/assets/{id} [put]
func (c *AssetController) Update() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	var req AssetRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}
	asset, err := c.service().UpdateAsset(c.Ctx.Request.Context(), session(c.Ctx), id, req.input())
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, asset)
}

// Delete 删除资产
// @Summary      Delete asset
// @Tags         Asset
// @Produce      json
// @Param        id path int true "Asset ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /hr/assets/{id} [delete]
func (c *AssetController) Delete() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	if err := c.service().DeleteAsset(c.Ctx.Request.Context(), session(c.Ctx), id); err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}
