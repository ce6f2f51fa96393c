// Package main 提供独立的会合点服务器
//
// 会合点只负责端点注册、房间发现与信令转发，文档与锁消息
// 始终在参与者之间的数据通道上直接传输。
//
// 使用方法:
//
//	rendezvous-server -listen :9000
//	rendezvous-server -config point.json
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/discovery/rendezvous"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("rendezvous/cmd")

var (
	configFile = flag.String("config", "", "配置文件路径")
	listen     = flag.String("listen", "", "监听地址（覆盖配置文件），如 :9000")
	logLevel   = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("❌ 错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	level, _ := log.ParseLevel(cfg.Log.Level)
	log.Setup(log.Options{
		Level:     level,
		Format:    log.ParseFormat(cfg.Log.Format),
		AddSource: cfg.Log.AddSource,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		point *rendezvous.Point
		reg   *prometheus.Registry
	)
	app := fx.New(
		fx.Supply(&cfg),
		fx.Provide(prometheus.NewRegistry),
		rendezvous.PointModule(),
		fx.Populate(&point, &reg),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("启动会合点失败: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			logger.Warn("停止会合点失败", "error", err)
		}
	}()

	printServerInfo(cfg)

	srv := newServer(cfg, point, reg)
	if err := srv.serve(ctx); err != nil {
		return err
	}

	fmt.Println("\n正在关闭会合点...")
	return nil
}

// loadConfig 优先级：命令行参数 > 配置文件 > 默认值
func loadConfig() (config.PointConfig, error) {
	cfg := config.DefaultPointConfig()
	if *configFile != "" {
		loaded, err := config.LoadPoint(*configFile)
		if err != nil {
			return cfg, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = *loaded
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	return cfg, cfg.Validate()
}

// printServerInfo 打印服务器信息
func printServerInfo(cfg config.PointConfig) {
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║              go-collab Rendezvous Server             ║")
	fmt.Println("╠══════════════════════════════════════════════════════╣")
	fmt.Printf("║ 监听地址: %s\n", cfg.ListenAddr)
	fmt.Printf("║ 信令路径: %s\n", cfg.Path)
	fmt.Printf("║ 注册上限: %d\n", cfg.MaxRegistrations)
	if cfg.Metrics.Enable {
		fmt.Println("║ 指标:     /metrics")
	}
	fmt.Println("╚══════════════════════════════════════════════════════╝")
	fmt.Println("按 Ctrl+C 停止服务器")
}
