package controllers

import (
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/code"
	"assetverse-http-service/internal/error/response"
	"assetverse-http-service/internal/infrastructure/realtime"
	"assetverse-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RealtimeController 处理实时通知连接
type RealtimeController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewRealtimeController 创建实时通知控制器
func NewRealtimeController(ctx *gin.Context, container *container.ServiceContainer) *RealtimeController {
	return &RealtimeController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleRealtimeFunc 返回一个处理实时通知连接的Gin处理函数
func HandleRealtimeFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRealtimeController(ctx, container)

		switch method {
		case "connect":
			controller.Connect()
		default:
			unknownMethod(ctx)
		}
	}
}

// Connect 建立 websocket 连接，推送与当前用户相关的事件。
// 浏览器无法设置请求头时可通过 token 查询参数传递令牌。
// @Summary      Event stream
// @Description  Upgrades to a websocket that receives request, approval, return and package events
// @Tags         Realtime
// @Param        token query string false "JWT when the Authorization header cannot be set"
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (c *RealtimeController) Connect() {
	current := session(c.Ctx)
	if current.Role == services.RoleGuest {
		response.Unauthorized(c.Ctx)
		return
	}

	hub, ok := c.Container.GetService("hub").(*realtime.Hub)
	if !ok || hub == nil {
		response.FailWithMessage(c.Ctx, code.ErrUnknown, "realtime notifications are disabled", nil)
		return
	}

	if err := hub.Serve(c.Ctx.Writer, c.Ctx.Request, current.Email); err != nil {
		logger.Warning("websocket连接失败 email=%s: %v", current.Email, err)
	}
}
