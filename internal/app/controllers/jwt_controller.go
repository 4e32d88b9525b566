package controllers

import (
	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceJWTController 定义认证控制器接口
type InterfaceJWTController interface {
	Login()
	RegisterHR()
	RegisterEmployee()
}

// JWTController 处理登录与注册请求
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController 创建一个新的认证控制器
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 表示登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"hr@acme.io"`
	Password string `json:"password" binding:"required" example:"Secret1x"`
}

// RegisterEmployeeRequest 表示员工注册请求
type RegisterEmployeeRequest struct {
	Name        string `json:"name" binding:"required" example:"Ana Silva"`
	Email       string `json:"email" binding:"required,email" example:"ana@acme.io"`
	Password    string `json:"password" binding:"required" example:"Secret1x"`
	DateOfBirth string `json:"date_of_birth" example:"1995-04-12"`
	PhotoURL    string `json:"photo_url" example:"https://example.com/ana.png"`
}

// RegisterHRRequest 表示HR注册请求
type RegisterHRRequest struct {
	RegisterEmployeeRequest
	CompanyName string `json:"company_name" binding:"required" example:"Acme"`
	CompanyLogo string `json:"company_logo" example:"https://example.com/acme.png"`
}

// AuthData 登录或注册成功后返回的数据
type AuthData struct {
	Token string                `json:"token"`
	Login *services.LoginResult `json:"login"`
	User  *models.User          `json:"user,omitempty"`
}

// HandleJWTFunc 返回一个处理认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "registerHR":
			controller.RegisterHR()
		case "registerEmployee":
			controller.RegisterEmployee()
		default:
			unknownMethod(ctx)
		}
	}
}

// Login 处理用户登录
// @Summary      User Login
// @Description  Verify email and password and return a JWT for the account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request parameters"
// @Success      200  {object}  SuccessResponse{data=services.LoginResult}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.Login(c.Ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, result)
}

// RegisterHR 注册HR经理
// @Summary      Register HR manager
// @Description  Create an HR account with the default employee limit and return a JWT
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterHRRequest true "HR registration"
// @Success      201  {object}  SuccessResponse{data=AuthData}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /auth/register/hr [post]
func (c *JWTController) RegisterHR() {
	var req RegisterHRRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}
	input := registerInput(req.RegisterEmployeeRequest)
	input.CompanyName = req.CompanyName
	input.CompanyLogo = req.CompanyLogo

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.RegisterHR(c.Ctx.Request.Context(), input)
	c.respondRegistered(user, req.Password, err)
}

// RegisterEmployee 注册员工
// @Summary      Register employee
// @Description  Create an employee account and return a JWT
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterEmployeeRequest true "Employee registration"
// @Success      201  {object}  SuccessResponse{data=AuthData}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /auth/register/employee [post]
func (c *JWTController) RegisterEmployee() {
	var req RegisterEmployeeRequest
	if !bindJSON(c.Ctx, &req) {
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.RegisterEmployee(c.Ctx.Request.Context(), registerInput(req))
	c.respondRegistered(user, req.Password, err)
}

func registerInput(req RegisterEmployeeRequest) services.RegisterInput {
	return services.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
		PhotoURL:    req.PhotoURL,
	}
}

// respondRegistered 注册成功后直接登录
func (c *JWTController) respondRegistered(user *models.User, password string, err error) {
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	login, err := jwtService.Login(c.Ctx.Request.Context(), user.Email, password)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, AuthData{Token: login.Token, Login: login, User: user})
}
