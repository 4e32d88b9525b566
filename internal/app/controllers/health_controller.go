package controllers

import (
	"context"
	"net/http"
	"time"

	"assetverse-http-service/internal/app/middleware"
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/code"
	"assetverse-http-service/internal/error/response"
	"assetverse-http-service/internal/infrastructure/database"
	"assetverse-http-service/internal/infrastructure/realtime"

	"github.com/gin-gonic/gin"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Container *container.ServiceContainer
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{Container: container}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	controller := NewHealthCheckController(container)
	return func(ctx *gin.Context) {
		switch method {
		case "ping":
			controller.Ping(ctx)
		case "health":
			controller.Health(ctx)
		default:
			unknownMethod(ctx)
		}
	}
}

// Ping 健康检查端点
// @Summary      Ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Router       /ping [get]
func (h *HealthCheckController) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Health 依赖检查。数据库不可用时返回 503。
// @Summary      Health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      503  {object}  SuccessResponse
// @Router       /health [get]
func (h *HealthCheckController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status, errorCode := http.StatusOK, code.ErrSuccess
	result := gin.H{"status": "healthy"}

	db := h.Container.GetDB()
	if err := database.Ping(ctx, db); err != nil {
		status, errorCode = http.StatusServiceUnavailable, code.ErrDatabase
		result["status"] = "unhealthy"
		result["database"] = gin.H{"status": "down", "error": err.Error()}
	} else if sqlDB, err := db.DB(); err == nil {
		stats := sqlDB.Stats()
		result["database"] = gin.H{
			"status":           "up",
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		}
	}

	redisService := h.Container.GetService("redis").(services.InterfaceRedisService)
	switch {
	case !redisService.Enabled():
		result["redis"] = "disabled"
	case redisService.Ping(ctx) != nil:
		result["redis"] = "down"
	default:
		result["redis"] = "up"
	}

	if hub, ok := h.Container.GetService("hub").(*realtime.Hub); ok && hub != nil {
		result["websocket_clients"] = hub.ClientCount()
	}
	result["response_cache"] = middleware.CacheStats()

	c.JSON(status, response.Response{
		Code:    errorCode,
		Message: result["status"].(string),
		Data:    result,
	})
}
