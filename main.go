package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uav-planner/algo"
	"uav-planner/config"
	"uav-planner/db"
	"uav-planner/handler"
	"uav-planner/logging"
	"uav-planner/observability"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	log, closer := logging.New(cfg.Log)
	defer closer.Close()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 用户存储：启用数据库时用 PostgreSQL，否则放在内存里
	var users db.UserStore = db.NewMemoryUserStore()
	if cfg.Database.Enabled {
		gdb, err := db.Open(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		users = db.NewGormUserStore(gdb)
	}
	if err := db.SeedAdmin(ctx, users, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("创建 admin 用户失败: %w", err)
	}

	// 3. 航点图引擎：指标和 SSE 都挂在它的通知上
	metrics, err := observability.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("注册指标失败: %w", err)
	}
	hub := handler.NewEventHub(64)
	engine := algo.NewEngine(cfg.Graph.MaxRange,
		algo.WithListener(algo.Listeners{hub, metrics}),
		algo.WithLogger(log.With("component", "engine")),
	)

	// 4. 初始化 Gin 引擎并配置路由
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(log), metrics.Middleware(), handler.CORS())
	setupRoutes(r, cfg, routeDeps{
		graph:   handler.NewGraphHandler(engine, hub, log),
		auth:    handler.NewAuthHandler(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log),
		metrics: metrics,
	})

	// 5. 启动服务器，收到信号后优雅关闭
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
		// SSE 连接跟随 ctx 一起结束，否则 Shutdown 会一直等
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("服务器启动", "addr", cfg.Server.Addr, "max_range_km", cfg.Graph.MaxRange, "auth", cfg.Auth.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("正在关闭服务器...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("服务器已退出")
	return nil
}

type routeDeps struct {
	graph   *handler.GraphHandler
	auth    *handler.AuthHandler
	metrics *observability.Collector
}

// setupRoutes 配置路由
func setupRoutes(r *gin.Engine, cfg *config.Config, deps routeDeps) {
	// 静态文件服务 - 提供前端页面
	r.Static("/static", cfg.Server.StaticDir)

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(deps.metrics.Handler()))

	// 根路径重定向到前端页面
	r.GET("/", func(c *gin.Context) {
		c.Redirect(302, "/static/index.html")
	})

	api := r.Group("/api")
	{
		// 公开接口 (无需认证)
		api.POST("/login", deps.auth.Login)
		api.POST("/register", deps.auth.Register)

		// 只读接口
		api.GET("/graph", deps.graph.GetGraph)
		api.GET("/graph/export", deps.graph.ExportGraph)
		api.GET("/waypoints", deps.graph.GetWaypoints)
		api.GET("/connections", deps.graph.GetConnections)
		api.GET("/config/max-range", deps.graph.GetMaxRange)
		api.GET("/events", deps.graph.Events)

		// 修改图的接口，开启认证时需要 Token
		authorized := api.Group("/")
		if cfg.Auth.Enabled {
			authorized.Use(deps.auth.AuthMiddleware())
		}
		{
			authorized.POST("/waypoints", deps.graph.AddWaypoint)
			authorized.PUT("/waypoints/:id", deps.graph.MoveWaypoint)
			authorized.DELETE("/waypoints/:index", deps.graph.RemoveWaypoint)
			authorized.DELETE("/waypoints", deps.graph.ClearWaypoints)
			authorized.PUT("/connections", deps.graph.ToggleConnection)
			authorized.POST("/graph/import", deps.graph.ImportGraph)
			authorized.PUT("/config/max-range", deps.graph.SetMaxRange)
		}
	}
}
