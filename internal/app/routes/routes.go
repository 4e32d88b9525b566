package routes

import (
	"time"

	_ "assetverse-http-service/docs"
	"assetverse-http-service/internal/app/controllers"
	"assetverse-http-service/internal/app/middleware"
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// PackagesCachePrefix 套餐列表响应缓存的键前缀，套餐变更后需清除
const PackagesCachePrefix = "/api/packages"

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(serviceContainer *container.ServiceContainer) *gin.Engine {
	cfg := serviceContainer.GetConfig()

	// 初始化 Gin
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 通用中间件
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	r.Use(middleware.RequestID())
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	// 初始化认证中间件
	middleware.InitAuthMiddleware(serviceContainer)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	public := api.Group("")
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	public.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	public.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(container, "health"))

	// 套餐列表
	public.GET("/packages", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandlePackageFunc(container, "list"))
	// 支付服务回调，使用签名令牌校验
	public.POST("/payments/checkout/complete", controllers.HandlePackageFunc(container, "complete"))

	// 认证路由 - 每秒2个请求，最多突发5个，按IP和路径限流
	authGroup := public.Group("/auth")
	authGroup.Use(middleware.CombinedRateLimiter(2, 5))
	authGroup.POST("/login", controllers.HandleJWTFunc(container, "login"))
	authGroup.POST("/register/hr", controllers.HandleJWTFunc(container, "registerHR"))
	authGroup.POST("/register/employee", controllers.HandleJWTFunc(container, "registerEmployee"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("")
	auth.Use(middleware.Authenticate())
	auth.Use(middleware.RequireAuth())

	// 添加通用限流中间件 - 每个会话每秒30个请求，最多突发50个请求
	auth.Use(middleware.SessionRateLimiter(30, 50))

	// 当前用户
	auth.GET("/me", controllers.HandleMeFunc(container, "get"))
	auth.PUT("/me", controllers.HandleMeFunc(container, "update"))

	// 实时通知
	auth.GET("/ws", controllers.HandleRealtimeFunc(container, "connect"))

	// 资产目录
	auth.GET("/assets", controllers.HandleAssetFunc(container, "list"))
	auth.GET("/assets/:id", controllers.HandleAssetFunc(container, "get"))

	// 员工路由
	employee := auth.Group("")
	employee.Use(middleware.RequireRole(services.RoleEmployee))
	{
		employee.POST("/requests", controllers.HandleRequestFunc(container, "submit"))
		employee.GET("/requests/mine", controllers.HandleRequestFunc(container, "mine"))
		employee.POST("/requests/:id/cancel", controllers.HandleRequestFunc(container, "cancel"))
		employee.GET("/assignments/mine", controllers.HandleReturnFunc(container, "myAssignments"))
		employee.POST("/assignments/:id/return", controllers.HandleReturnFunc(container, "initiate"))
		employee.GET("/team", controllers.HandleEmployeeFunc(container, "team"))
	}

	// 申请详情，申请人和所属HR都可查看
	auth.GET("/requests/:id", controllers.HandleRequestFunc(container, "get"))

	// HR路由
	hr := auth.Group("/hr")
	hr.Use(middleware.RequireRole(services.RoleHR))
	{
		hr.GET("/assets", controllers.HandleAssetFunc(container, "listHR"))
		hr.POST("/assets", controllers.HandleAssetFunc(container, "create"))
		hr.PUT("/assets/:id", controllers.HandleAssetFunc(container, "update"))
		hr.DELETE("/assets/:id", controllers.HandleAssetFunc(container, "delete"))

		hr.GET("/requests", controllers.HandleRequestFunc(container, "listHR"))
		hr.POST("/requests/:id/approve", controllers.HandleApprovalFunc(container, "approve"))
		hr.POST("/requests/:id/reject", controllers.HandleApprovalFunc(container, "reject"))

		hr.GET("/returns", controllers.HandleReturnFunc(container, "listHR"))
		hr.POST("/returns/:id/complete", controllers.HandleReturnFunc(container, "complete"))
		hr.POST("/returns/:id/reject", controllers.HandleReturnFunc(container, "reject"))

		hr.GET("/employees", controllers.HandleEmployeeFunc(container, "list"))
		hr.DELETE("/employees/:id", controllers.HandleEmployeeFunc(container, "remove"))

		hr.GET("/package", controllers.HandlePackageFunc(container, "usage"))
		hr.POST("/package/checkout", controllers.HandlePackageFunc(container, "checkout"))
	}
}
