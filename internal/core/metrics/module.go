package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-collab/config"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Metrics 提供的结果
type Result struct {
	fx.Out

	Registry *prometheus.Registry
	Session  *Session
}

// Module 是 metrics 的 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(Provide),
	)
}

// Provide 创建注册表与会话指标
//
// 指标关闭时会话指标不注册到注册表。
func Provide(p Params) Result {
	reg := prometheus.NewRegistry()
	cfg := config.DefaultMetricsConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Metrics
	}

	var r prometheus.Registerer
	if cfg.Enable {
		r = reg
	}
	return Result{
		Registry: reg,
		Session:  NewSession(r, cfg.Namespace),
	}
}
