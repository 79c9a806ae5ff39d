// Package app 负责应用初始化与启动: 配置、日志、追踪、监控、存储、
// 保管库核心、路由与定时任务的装配都在这里完成.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/handle"
	"github.com/yeisme/taskvault/pkg/internal/jobs"
	"github.com/yeisme/taskvault/pkg/internal/metastore"
	"github.com/yeisme/taskvault/pkg/internal/router"
	"github.com/yeisme/taskvault/pkg/internal/storage"
	"github.com/yeisme/taskvault/pkg/internal/vault"
	"github.com/yeisme/taskvault/pkg/log"
	"github.com/yeisme/taskvault/pkg/metrics"
	"github.com/yeisme/taskvault/pkg/middleware"
	"github.com/yeisme/taskvault/pkg/scheduler"
	"github.com/yeisme/taskvault/pkg/tracing"
)

// App 聚合运行一个保管库实例所需的全部组件.
type App struct {
	Engine  *gin.Engine
	Vault   *vault.Vault
	Manager *storage.Manager
	Sched   *scheduler.Scheduler
	config  *configs.AppConfig
}

// NewApp 按配置装配应用, 任何组件初始化失败都直接退出.
func NewApp(configPath string) *App {
	ctx := context.Background()

	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}
	config := configs.GetConfig()

	log.Init()

	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	v, err := BuildVault(config, manager)
	if err != nil {
		fmt.Printf("Error initializing vault: %v\n", err)
		os.Exit(1)
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}
	if err := jobs.RegisterCronJobs(sched, v, &config.Vault); err != nil {
		fmt.Printf("Error registering cron jobs: %v\n", err)
		os.Exit(1)
	}

	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.MaxMultipartMemory = config.Vault.MaxFileSize

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		// 文件内容本身多为压缩格式，只压 JSON 响应覆盖的路径
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{".png", ".jpg", ".gz", ".zip", ".mp4"})),
	)
	if config.RateLimit.Enable {
		engine.Use(middleware.RateLimitMiddleware(config.RateLimit))
	}

	// 存储管理器注入请求 context，健康检查等处理器从中取用
	engine.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(storage.WithManager(c.Request.Context(), manager))
		c.Next()
	})

	h := handle.New(v, config, sched)
	router.Register(engine, h, middleware.RequesterMiddleware(config.Auth))
	metrics.RegisterMetricsRoute(config.Metrics, engine)

	return &App{
		Engine:  engine,
		Vault:   v,
		Manager: manager,
		Sched:   sched,
		config:  config,
	}
}

// BuildVault 依据启用的存储组件装配保管库核心.
func BuildVault(config *configs.AppConfig, manager *storage.Manager) (*vault.Vault, error) {
	dbc := manager.GetDBClient()
	if dbc == nil {
		return nil, errors.New("db client not initialized")
	}
	store, err := metastore.NewGormStore(dbc.DB)
	if err != nil {
		return nil, err
	}

	opts := []vault.Option{}
	if config.Vault.BackupEnabled {
		if s3c := manager.GetS3Client(); s3c != nil {
			opts = append(opts, vault.WithReplicator(vault.NewS3Replicator(s3c)))
		}
	}
	if mqc := manager.GetMQClient(); mqc != nil {
		opts = append(opts, vault.WithEventSink(vault.NewMQEventSink(mqc.Publisher(), &config.Events)))
	}
	if kvc := manager.GetKVClient(); kvc != nil {
		opts = append(opts, vault.WithCache(kvc.KVStore, config.KV.GetTTL()))
	}

	return vault.New(&config.Vault, store, opts...), nil
}

// Run 启动调度器与 HTTP 服务, ctx 取消后优雅退出.
func (a *App) Run(ctx context.Context) error {
	a.Sched.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Logger().Info().Str("addr", srv.Addr).Msg("taskvault listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		log.Logger().Warn().Err(err).Msg("http server shutdown failed")
	}

	return a.Shutdown()
}

// Shutdown 停止调度器并关闭存储连接.
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Sched.Stop(); err != nil {
		log.Logger().Warn().Err(err).Msg("scheduler stop failed")
	}
	if err := tracing.ShutdownTracer(shutdownCtx); err != nil {
		log.Logger().Warn().Err(err).Msg("tracer shutdown failed")
	}
	if err := a.Manager.Close(); err != nil {
		log.Logger().Warn().Err(err).Msg("storage close failed")
	}

	log.Logger().Info().Msg("taskvault stopped")

	return nil
}
