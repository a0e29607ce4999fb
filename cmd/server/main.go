package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/MemeVerse/memeverse-backend/api"
	"github.com/MemeVerse/memeverse-backend/internal/platform/cache"
	"github.com/MemeVerse/memeverse-backend/internal/platform/config"
	"github.com/MemeVerse/memeverse-backend/internal/platform/database"
	"github.com/MemeVerse/memeverse-backend/internal/platform/health"
	"github.com/MemeVerse/memeverse-backend/internal/platform/shutdown"
	"github.com/MemeVerse/memeverse-backend/internal/platform/startup"
	"github.com/MemeVerse/memeverse-backend/internal/template"
	"github.com/MemeVerse/memeverse-backend/internal/upload"
	"github.com/MemeVerse/memeverse-backend/internal/user"
	"github.com/MemeVerse/memeverse-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 0. 加载.env中的密钥(如IMGBB_API_KEY)，文件不存在则忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置文件: %v", err))
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	user.GenerateSecretKey()
	user.ConfigureModule(cfg.Auth)
	template.ConfigureModule(cfg.Services.Template)
	upload.ConfigureModule(cfg.Services.ImageHost)

	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 1. 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 2. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 3. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 4. 创建生命周期管理器并启动所有后台服务
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	healthHandle, err := forcefulManager.NewServiceHandle("Redis健康检查器")
	if err != nil {
		panic(err)
	}
	go health.StartRedisHealthCheck(healthHandle)

	syncHandle, err := gracefulManager.NewServiceHandle("模板同步工作器")
	if err != nil {
		panic(err)
	}
	go template.StartTemplateSync(syncHandle)

	reconcileHandle, err := gracefulManager.NewServiceHandle("缓存对账调度器")
	if err != nil {
		panic(err)
	}
	go cache.StartReconcileScheduler(reconcileHandle)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		// 允许的前端地址
		AllowOrigins: cfg.Server.Cors.AllowedOrigins,
		// 允许的HTTP方法
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		// 允许的请求头
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		// 暴露给前端的响应头
		ExposeHeaders: []string{"Content-Length"},
		// 是否允许携带Cookies
		AllowCredentials: true,
		// 预检请求(OPTIONS)的缓存时间
		MaxAge: 12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 5. 阻塞等待停机信号，并执行两阶段优雅停机
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
