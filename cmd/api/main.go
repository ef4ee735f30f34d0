package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/handler"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/jobs"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/platform"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/report"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/repository"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("服务器异常退出", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("无法加载配置文件: %w", err)
	}

	/**********************************************
	 * 外部依赖
	 **********************************************/
	db, err := platform.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewRepository(cfg, db)
	if err := platform.EnsureInitialAdmin(repo, cfg); err != nil {
		return fmt.Errorf("无法创建初始管理员: %w", err)
	}

	broker, err := platform.OpenMailBroker(cfg)
	if err != nil {
		return err
	}
	defer broker.Close()

	rdb, err := platform.OpenRedis(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reports, err := report.NewGenerator(cfg.Report.Dir)
	if err != nil {
		return fmt.Errorf("无法创建报表目录: %w", err)
	}

	/**********************************************
	 * 路由和定时任务
	 **********************************************/
	h, err := handler.NewHandler(cfg, repo, broker.Channel, rdb, reports)
	if err != nil {
		return fmt.Errorf("无法创建 handler: %w", err)
	}
	h.RegisterRoutes()

	scheduler, err := jobs.NewScheduler(cfg, repo, reports, h.NotifyPostulationStatus)
	if err != nil {
		return fmt.Errorf("无法创建定时任务: %w", err)
	}
	scheduler.Start()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		scheduler.Stop()
		return fmt.Errorf("无法启动服务器: %w", err)
	case <-ctx.Done():
	}
	logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭服务器失败", "error", err)
	}

	// 等待正在运行的定时任务结束
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Error("等待定时任务结束超时")
	}

	logger.Info("服务器已成功关闭")
	return nil
}
