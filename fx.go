package collab

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/identity"
	"github.com/dep2p/go-collab/internal/core/metrics"
	"github.com/dep2p/go-collab/internal/core/storage"
	"github.com/dep2p/go-collab/internal/core/transport"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var fxLogger = log.Logger("collab/fx")

// SessionParams 会话依赖
type SessionParams struct {
	fx.In

	LC       fx.Lifecycle
	Network  interfaces.Network
	Identity interfaces.Identity
	Config   *config.Config   `optional:"true"`
	Metrics  *metrics.Session `optional:"true"`
}

// ProvideSession 提供会话，停止时离开房间
func ProvideSession(p SessionParams) *Session {
	s := New(p.Network, p.Identity,
		WithConfig(p.Config),
		WithMetrics(p.Metrics),
	)
	p.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return s.Close()
		},
	})
	return s
}

// Module 返回会话 Fx 模块
//
// 需要 interfaces.Network 与 interfaces.Identity。
func Module() fx.Option {
	return fx.Module("collab",
		fx.Provide(ProvideSession),
	)
}

// NewApp 组装完整应用
//
// 加载顺序（按依赖）：
//  1. Storage（仅在持久化身份时）
//  2. Identity → Metrics → Transport
//  3. Session
//
// extra 追加用户自定义的 fx 选项，例如 fx.Populate。
func NewApp(cfg *config.Config, extra ...fx.Option) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 基础组件
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
	}
	if cfg.Identity.Persist {
		modules = append(modules, storage.Module())
	}
	modules = append(modules,
		identity.Module(),
		metrics.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 传输与会话
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		transport.Module(),
		Module(),
	)
	fxLogger.Debug("组装应用", "persist", cfg.Identity.Persist, "rendezvous", cfg.Rendezvous.URL)

	// ════════════════════════════════════════════════════════════════════════
	// 4. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, extra...)
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...), nil
}
