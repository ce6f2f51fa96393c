package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/discovery/rendezvous"
)

// shutdownTimeout 优雅关闭等待时长
const shutdownTimeout = 5 * time.Second

// server 会合点的 HTTP 外壳
type server struct {
	cfg   config.PointConfig
	point *rendezvous.Point
	http  *http.Server
}

func newServer(cfg config.PointConfig, point *rendezvous.Point, reg *prometheus.Registry) *server {
	return &server{
		cfg:   cfg,
		point: point,
		http: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           newRouter(cfg, point, reg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// newRouter 路由：信令路径、/healthz，开启指标时还有 /metrics
func newRouter(cfg config.PointConfig, point *rendezvous.Point, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle(cfg.Path, point)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        "ok",
			"registrations": point.Stats().Registrations,
		})
	})
	if cfg.Metrics.Enable && reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	return r
}

// serve 监听直到 ctx 取消，然后优雅关闭
func (s *server) serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.serveListener(ctx, ln)
}

func (s *server) serveListener(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("会合点已启动", "addr", ln.Addr().String(), "path", s.cfg.Path)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// 先关闭会合点，被劫持的 websocket 连接不受 Shutdown 管理
		_ = s.point.Close()
		return s.http.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
