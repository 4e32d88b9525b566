// @title           AssetVerse HTTP Service API
// @version         1.0
// @description     Corporate asset management: catalog, requests, approvals, returns and package upgrades
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"assetverse-http-service/internal/app/middleware"
	"assetverse-http-service/internal/app/routes"
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/infrastructure/database"
	"assetverse-http-service/internal/infrastructure/mqtt"
	"assetverse-http-service/internal/infrastructure/realtime"
	"assetverse-http-service/internal/infrastructure/telemetry"
	Logger "assetverse-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const serviceName = "assetverse-http-service"

func main() {
	// 设置最大处理器数量，提高并发性能
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()
	if cfg.EnvType == "SERVER" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 链路追踪
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg)
	if err != nil {
		log.Fatalf("初始化链路追踪失败: %v", err)
	}

	// 创建数据库连接池
	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("无法创建数据库连接池: %v", err)
	}
	db := pool.GetDB()

	// 根据配置执行数据库迁移
	if err := database.Migrate(db, cfg.DBMigrationMode); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	// 确保默认套餐存在
	if err := database.SeedPackages(ctx, db); err != nil {
		log.Fatalf("初始化套餐失败: %v", err)
	}
	middleware.PurgeCacheByPrefix(routes.PackagesCachePrefix)

	// 实时通知
	hub := realtime.NewHub(cfg.CORSAllowOrigin)
	var publishers []services.Publisher
	var mqttPublisher *mqtt.Publisher
	if cfg.MQTTEnabled {
		mqttPublisher = mqtt.NewPublisher(cfg)
		publishers = append(publishers, mqttPublisher)
		go func() {
			if err := mqttPublisher.Connect(ctx); err != nil {
				Logger.Error("MQTT连接失败，事件将只通过websocket推送: %v", err)
			}
		}()
	}

	// 创建服务容器并初始化路由
	serviceContainer := container.NewServiceContainer(db, cfg, hub, publishers...)
	r := routes.SetupRouter(serviceContainer)

	// 打印系统信息
	printSystemInfo(pool)

	// 启动服务器 - 注意监听所有接口(0.0.0.0)而不是只监听localhost
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		Logger.Info("服务器启动在: http://0.0.0.0:%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Error("启动服务器失败: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	Logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// websocket 连接被 hijack，不受 Shutdown 管理，需要单独关闭
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Logger.Error("关闭服务器失败: %v", err)
	}
	if mqttPublisher != nil {
		mqttPublisher.Disconnect()
	}
	if err := pool.Close(); err != nil {
		Logger.Error("关闭数据库连接失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		Logger.Error("关闭链路追踪失败: %v", err)
	}
	Logger.Info("服务器已关闭")
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	// 打印数据库连接池信息
	stats, err := pool.Stats()
	if err == nil {
		log.Printf("数据库连接池状态: %+v", stats)
	}

	// 打印系统资源信息
	log.Printf("系统CPU核心数: %d", runtime.NumCPU())
	log.Printf("当前Go协程数: %d", runtime.NumGoroutine())

	// 打印内存信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("系统内存使用: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
