// Package main 提供 go-collab 的交互式命令行
//
// 使用方法:
//
//	collab -rendezvous ws://127.0.0.1:9000/rendezvous -room survey1 -name 小王
//
// 启动后在提示符下输入 help 查看命令。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/dep2p/go-collab"
	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/stun"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("collab/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//	命令行参数：这次运行的覆盖项
//	JSON 配置文件：长期使用的固定配置
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 运行时参数
	// ─────────────────────────────────────────────────────────────────────
	configFile = flag.String("config", "", "配置文件路径")
	room       = flag.String("room", "", "启动后直接加入的房间")
	name       = flag.String("name", "", "昵称（覆盖已保存的昵称）")
	rendezvous = flag.String("rendezvous", "", "会合点地址，如 ws://127.0.0.1:9000/rendezvous")
	dataDir    = flag.String("data-dir", "", "数据目录（默认: ./data）")
	ephemeral  = flag.Bool("ephemeral", false, "不持久化身份，每次启动使用新 ID")

	// ─────────────────────────────────────────────────────────────────────
	// 日志参数
	// ─────────────────────────────────────────────────────────────────────
	logLevel = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")
	logFile  = flag.String("log", "", "日志文件路径（默认输出到 stderr）")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	logHandle, err := setupLogging(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "警告: %v\n", err)
	}
	if logHandle != nil {
		defer func() { _ = logHandle.Close() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		sess *collab.Session
		reg  *prometheus.Registry
	)
	app, err := collab.NewApp(cfg, fx.Populate(&sess, &reg))
	if err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			logger.Warn("停止应用失败", "error", err)
		}
	}()

	if cfg.Metrics.Enable && cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, reg)
		defer func() { _ = srv.Close() }()
	}

	printBanner(cfg, sess)

	sh := newShell(sess, newStunClient(cfg.Mesh), os.Stdout)
	if *room != "" {
		if err := sh.exec(ctx, "join "+*room); err != nil {
			return fmt.Errorf("加入房间失败: %w", err)
		}
	}
	return sh.run(ctx, os.Stdin)
}

// buildConfig 构建配置
//
// 优先级（从高到低）：命令行参数 > 配置文件 > 默认值
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	if isFlagSet("rendezvous") {
		cfg.Rendezvous.URL = *rendezvous
	}
	if isFlagSet("name") {
		cfg.Identity.Name = *name
	}
	if isFlagSet("data-dir") && *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if *ephemeral {
		cfg.Identity.Persist = false
	}
	if isFlagSet("log-level") {
		cfg.Log.Level = *logLevel
	}
	return cfg, cfg.Validate()
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// setupLogging 按配置初始化日志，指定文件时返回文件句柄
func setupLogging(c config.LogConfig) (*os.File, error) {
	level, _ := log.ParseLevel(c.Level)
	opts := log.Options{
		Level:     level,
		Format:    log.ParseFormat(c.Format),
		AddSource: c.AddSource,
	}
	if *logFile == "" {
		log.Setup(opts)
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(*logFile), 0750); err != nil {
		log.Setup(opts)
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.Setup(opts)
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	opts.Output = f
	log.Setup(opts)
	return f, nil
}

// serveMetrics 在独立地址暴露 /metrics
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("指标服务退出", "addr", addr, "error", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", addr)
	return srv
}

func newStunClient(c config.MeshConfig) *stun.Client {
	return stun.NewClient(stun.ServersFromICE(c.ICEServers))
}

// printBanner 打印本地身份信息
func printBanner(cfg *config.Config, sess *collab.Session) {
	self := sess.Self()
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║                 go-collab 协作终端                    ║")
	fmt.Println("╠══════════════════════════════════════════════════════╣")
	fmt.Printf("║ 身份:   %s\n", self.ID)
	fmt.Printf("║ 昵称:   %s\n", self.Name)
	fmt.Printf("║ 会合点: %s\n", cfg.Rendezvous.URL)
	if cfg.Identity.Persist {
		fmt.Printf("║ 数据:   %s\n", cfg.Storage.DataDir)
	} else {
		fmt.Println("║ 数据:   （临时身份）")
	}
	fmt.Println("╚══════════════════════════════════════════════════════╝")
}
