package controllers

import (
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// PackageController 处理套餐与升级支付
type PackageController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPackageController 创建套餐控制器
func NewPackageController(ctx *gin.Context, container *container.ServiceContainer) *PackageController {
	return &PackageController{
		Ctx:       ctx,
		Container: container,
	}
}

// CheckoutRequest 创建支付会话的请求
type CheckoutRequest struct {
	PackageID uint `json:"package_id" binding:"required" example:"2"`
}

// CompleteCheckoutRequest 支付回调请求
type CompleteCheckoutRequest struct {
	Token string `json:"token" binding:"required"`
}

// HandlePackageFunc 返回一个处理套餐请求的Gin处理函数
func HandlePackageFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPackageController(ctx, container)

		switch method {
		case "list":
			controller.List()
		case "usage":
			controller.Usage()
		case "checkout":
			controller.Checkout()
		case "complete":
			controller.Complete()
		default:
			unknownMethod(ctx)
		}
	}
}

func (c *PackageController) service() services.InterfacePackageService {
	return c.Container.GetService("package").(services.InterfacePackageService)
}

// List 套餐列表
// @Summary      Packages
// @Tags         Package
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.Package}
// @Router       /packages [get]
func (c *PackageController) List() {
	packages, err := c.service().ListPackages(c.Ctx.Request.Context())
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, packages)
}

// Usage 当前套餐的使用情况
// @Summary      Package usage
// @Tags         Package
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.PackageUsage}
// @Failure      403  {object}  ErrorResponse
// @Router       /hr/package [get]
func (c *PackageController) Usage() {
	usage, err := c.service().Usage(c.Ctx.Request.Context(), session(c.Ctx).Email)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, usage)
}

// Checkout 创建升级支付会话
// @Summary      Start checkout
// @Tags         Package
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Target package"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=services.CheckoutResult}
// @Failure      404  {object}  ErrorResponse
// @Router       /hr/package/checkout [post]
func (c *PackageController) Checkout() {
	var req CheckoutRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}
	result, err := c.service().CreateCheckout(c.Ctx.Request.Context(), session(c.Ctx), req.PackageID)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, result)
}

// Complete 支付服务回调，令牌由支付服务签发。重复回调返回相同结果。
// @Summary      Complete checkout
// @Tags         Package
// @Accept       json
// @Produce      json
// @Param        request body CompleteCheckoutRequest true "Signed callback token"
// @Success      200  {object}  SuccessResponse{data=models.CheckoutSession}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /payments/checkout/complete [post]
func (c *PackageController) Complete() {
	var req CompleteCheckoutRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}
	checkout, err := c.service().CompleteCheckout(c.Ctx.Request.Context(), req.Token)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, checkout)
}
