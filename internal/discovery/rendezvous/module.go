package rendezvous

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/metrics"
)

// PointParams 会合点服务端依赖参数
type PointParams struct {
	fx.In

	LC         fx.Lifecycle
	UnifiedCfg *config.PointConfig  `optional:"true"`
	Registry   *prometheus.Registry `optional:"true"`
}

// PointResult 会合点服务端输出
type PointResult struct {
	fx.Out

	Point *Point
}

// PointModule 会合点服务端 Fx 模块
func PointModule() fx.Option {
	return fx.Module("rendezvous-point",
		fx.Provide(ProvidePoint),
	)
}

// ProvidePoint 创建会合点并注册生命周期
func ProvidePoint(p PointParams) PointResult {
	unified := config.DefaultPointConfig()
	if p.UnifiedCfg != nil {
		unified = *p.UnifiedCfg
	}

	var m *metrics.Point
	if unified.Metrics.Enable && p.Registry != nil {
		m = metrics.NewPoint(p.Registry, unified.Metrics.Namespace)
	}

	point := NewPoint(PointConfigFromUnified(unified), m)
	p.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return point.Close()
		},
	})
	return PointResult{Point: point}
}
