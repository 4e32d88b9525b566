package middleware

import (
	"strings"

	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/code"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

var (
	jwtService     services.InterfaceJWTService
	sessionService services.InterfaceSessionService
)

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(c *container.ServiceContainer) {
	jwtService = c.GetService("jwt").(services.InterfaceJWTService)
	sessionService = c.GetService("session").(services.InterfaceSessionService)
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// Authenticate 解析当前会话并存入上下文。
// 没有令牌时为 guest；令牌无效时返回 401；令牌有效但没有用户记录时为 unresolved。
// websocket 握手无法携带请求头，允许通过 token 查询参数传递。
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c.GetHeader("Authorization"))
		if tokenString == "" && c.IsWebsocket() {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			session, _ := sessionService.Resolve(c.Request.Context(), "", false)
			c.Set(sessionKey, session)
			c.Next()
			return
		}

		claims, err := jwtService.ExtractClaims(tokenString)
		if err != nil {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Invalid token: "+err.Error(), nil)
			c.Abort()
			return
		}

		session, err := sessionService.Resolve(c.Request.Context(), claims.Email, true)
		if err != nil {
			response.FailWithError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireAuth 要求已登录（包括 unresolved）
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsAuthenticated() {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Authorization header is required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole 要求指定角色。unresolved 与角色不符分别返回不同的错误码。
func RequireRole(role services.SessionRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := CurrentSession(c)
		switch session.Role {
		case role:
			c.Next()
			return
		case services.RoleGuest:
			response.FailWithMessage(c, code.ErrTokenInvalid, "Authorization header is required", nil)
		case services.RoleUnresolved:
			response.FailWithError(c, services.ErrRoleUnresolved)
		default:
			response.FailWithMessage(c, code.ErrRoleRequired, "Insufficient permissions: requires "+string(role)+" role", nil)
		}
		c.Abort()
	}
}

// CurrentSession 获取上下文中的会话，未经过认证中间件时为 guest
func CurrentSession(c *gin.Context) services.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(services.Session); ok {
			return session
		}
	}
	return services.Session{Role: services.RoleGuest}
}
