package container

import (
	"context"
	"sync"
	"time"

	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/infrastructure/realtime"
	"assetverse-http-service/pkg/logger"

	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	hub    *realtime.Hub

	// 基础服务
	jwtService     services.InterfaceJWTService
	redisService   services.InterfaceRedisService
	sessionService services.InterfaceSessionService
	notifier       services.InterfaceNotificationService

	// 业务服务
	userService        services.InterfaceUserService
	assetService       services.InterfaceAssetService
	requestService     services.InterfaceRequestService
	approvalService    services.InterfaceApprovalService
	returnService      services.InterfaceReturnService
	affiliationService services.InterfaceAffiliationService
	packageService     services.InterfacePackageService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器。hub 不为空时同时作为事件投递通道。
func NewServiceContainer(db *gorm.DB, cfg *config.Config, hub *realtime.Hub, publishers ...services.Publisher) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		hub:    hub,
	}
	container.initializeServices(publishers)
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices(publishers []services.Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化Redis服务，连接失败时仍可使用（缓存全部未命中）
	c.redisService = services.NewRedisService(c.config)
	if c.redisService.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.redisService.Ping(ctx); err != nil {
			logger.Warning("Redis连接测试失败: %v，缓存读写将失败并回退到数据库", err)
		}
	}

	// 事件投递通道
	if c.hub != nil {
		publishers = append([]services.Publisher{c.hub}, publishers...)
	}
	c.notifier = services.NewNotificationService(publishers...)

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config, c.db)
	c.sessionService = services.NewSessionService(c.db, c.config, c.redisService)

	// 初始化业务服务
	c.userService = services.NewUserService(c.db, c.config, c.sessionService)
	c.assetService = services.NewAssetService(c.db, c.config)
	c.requestService = services.NewRequestService(c.db, c.config, c.notifier)
	c.approvalService = services.NewApprovalService(c.db, c.config, c.notifier)
	c.returnService = services.NewReturnService(c.db, c.config, c.notifier)
	c.affiliationService = services.NewAffiliationService(c.db, c.config, c.notifier)
	c.packageService = services.NewPackageService(c.db, c.config, c.redisService, c.sessionService, c.notifier)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "hub":
		return c.hub
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "session":
		return c.sessionService
	case "notification":
		return c.notifier
	case "user":
		return c.userService
	case "asset":
		return c.assetService
	case "request":
		return c.requestService
	case "approval":
		return c.approvalService
	case "return":
		return c.returnService
	case "affiliation":
		return c.affiliationService
	case "package":
		return c.packageService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}
