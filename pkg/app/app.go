// Package app 提供应用程序的初始化、组装与优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/spacedash/pkg/api"
	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/internal/jobs"
	"github.com/yeisme/spacedash/pkg/internal/model"
	"github.com/yeisme/spacedash/pkg/internal/mq"
	"github.com/yeisme/spacedash/pkg/internal/storage"
	"github.com/yeisme/spacedash/pkg/log"
	"github.com/yeisme/spacedash/pkg/metrics"
	"github.com/yeisme/spacedash/pkg/middleware"
	"github.com/yeisme/spacedash/pkg/scheduler"
	"github.com/yeisme/spacedash/pkg/tracing"
)

// shutdownTimeout 优雅退出的最长等待时间.
const shutdownTimeout = 15 * time.Second

type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
	consumer  *mq.Consumer
	logger    zerolog.Logger
}

// InitCore 初始化配置、日志与存储，按 db.auto_migrate 迁移表结构.
// CLI 子命令与 HTTP 服务共用.
func InitCore(ctx context.Context, configPath string) (*storage.Manager, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	log.Init()

	manager, err := storage.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	if configs.GetConfig().DB.AutoMigrate {
		if err := manager.DB.Migrate(ctx, model.All()...); err != nil {
			return nil, errors.Join(err, manager.Close())
		}
	}

	return manager, nil
}

// NewApp 组装 HTTP 服务、事件消费者与定时任务.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	manager, err := InitCore(ctx, configPath)
	if err != nil {
		return nil, err
	}

	config := configs.GetConfig()

	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, errors.Join(fmt.Errorf("init tracing: %w", err), manager.Close())
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, errors.Join(fmt.Errorf("init metrics: %w", err), manager.Close())
	}

	a := &App{config: config, manager: manager, logger: log.Component("app")}

	if a.consumer, err = mq.NewConsumer(manager); err != nil {
		return nil, errors.Join(fmt.Errorf("init consumer: %w", err), manager.Close())
	}

	if a.scheduler, err = scheduler.NewScheduler(); err != nil {
		return nil, errors.Join(fmt.Errorf("init scheduler: %w", err), manager.Close())
	}

	if err := jobs.RegisterCronJobs(a.scheduler, manager, config.Usage); err != nil {
		return nil, errors.Join(err, a.scheduler.Stop(), manager.Close())
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	a.Engine = gin.New()
	middleware.Setup(a.Engine, config, manager, a.scheduler)
	api.RegisterGroup(a.Engine, config)

	return a, nil
}

// Run 启动服务，ctx 取消后依次关闭 HTTP、调度器、消费者与存储.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
		WriteTimeout:      a.config.Server.GetTimeoutDuration(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.consumer.Run(gctx)
	})

	g.Go(func() error {
		a.scheduler.Start()
		a.logger.Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			srv.Shutdown(shutdownCtx),
			a.scheduler.Stop(),
			a.consumer.Close(),
		)
	})

	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(runErr, a.manager.Close(), tracing.ShutdownTracer(shutdownCtx))
}
