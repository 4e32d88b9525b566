package controllers

import (
	"errors"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// MeController 处理当前用户的资料
type MeController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMeController 创建当前用户控制器
func NewMeController(ctx *gin.Context, container *container.ServiceContainer) *MeController {
	return &MeController{
		Ctx:       ctx,
		Container: container,
	}
}

// UpdateProfileRequest 更新资料请求，未提供的字段不修改
type UpdateProfileRequest struct {
	Name        *string `json:"name" example:"Ana Silva"`
	PhotoURL    *string `json:"photo_url" example:"https://example.com/ana.png"`
	DateOfBirth *string `json:"date_of_birth" example:"1995-04-12"`
}

// MeData 当前会话与用户资料
type MeData struct {
	Session services.Session `json:"session"`
	User    *models.User     `json:"user,omitempty"`
}

// HandleMeFunc 返回一个处理当前用户请求的Gin处理函数
func HandleMeFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMeController(ctx, container)

		switch method {
		case "get":
			controller.Get()
		case "update":
			controller.Update()
		default:
			unknownMethod(ctx)
		}
	}
}

// Get 获取当前会话。已登录但没有用户记录时只返回会话（角色为 unresolved）。
// @Summary      Current session
// @Description  Resolve the caller's role and profile
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=MeData}
// @Failure      401  {object}  ErrorResponse
// @Router       /me [get]
func (c *MeController) Get() {
	current := session(c.Ctx)
	data := MeData{Session: current}

	if current.Role == services.RoleHR || current.Role == services.RoleEmployee {
		userService := c.Container.GetService("user").(services.InterfaceUserService)
		user, err := userService.GetByEmail(c.Ctx.Request.Context(), current.Email)
		if err != nil && !errors.Is(err, services.ErrUserNotFound) {
			response.FailWithError(c.Ctx, err)
			return
		}
		data.User = user
	}
	response.Success(c.Ctx, data)
}

// Update 更新个人资料
// @Summary      Update profile
// @Description  Update name, photo or date of birth of the caller
// @Tags         Me
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Profile fields"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /me [put]
func (c *MeController) Update() {
	current := session(c.Ctx)
	if current.Role == services.RoleUnresolved {
		response.FailWithError(c.Ctx, services.ErrRoleUnresolved)
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.UpdateProfile(c.Ctx.Request.Context(), current.Email, services.ProfileUpdate{
		Name:        req.Name,
		PhotoURL:    req.PhotoURL,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}
