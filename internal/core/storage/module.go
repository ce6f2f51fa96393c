package storage

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/storage/engine"
	"github.com/dep2p/go-collab/internal/core/storage/engine/badger"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("core/storage")

// Params 模块依赖
type Params struct {
	fx.In

	LC         fx.Lifecycle
	UnifiedCfg *config.Config `optional:"true"`
}

// Module 提供 engine.Engine，启动时开始 value log 回收，停止时关闭数据库
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(Provide),
	)
}

// Provide 打开 ${DataDir}/collab.db
func Provide(p Params) (engine.Engine, error) {
	eng, err := Open(EngineConfig(p.UnifiedCfg))
	if err != nil {
		return nil, err
	}
	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return eng.Start()
		},
		OnStop: func(context.Context) error {
			if err := eng.Close(); err != nil {
				logger.Warn("关闭存储引擎失败", "error", err)
				return err
			}
			logger.Debug("存储引擎已关闭")
			return nil
		},
	})
	return eng, nil
}

// EngineConfig 由统一配置得到引擎配置
func EngineConfig(cfg *config.Config) *engine.Config {
	sc := config.DefaultStorageConfig()
	if cfg != nil && cfg.Storage.DataDir != "" {
		sc = cfg.Storage
	}
	return engine.DefaultConfig(sc.DBPath())
}

// Open 打开 badger 引擎
func Open(cfg *engine.Config) (engine.Engine, error) {
	eng, err := badger.New(cfg)
	if err != nil {
		logger.Error("打开存储引擎失败", "path", cfg.Path, "error", err)
		return nil, err
	}
	return eng, nil
}
