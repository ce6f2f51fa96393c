package identity

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/storage/engine"
	"github.com/dep2p/go-collab/internal/core/storage/kv"
	"github.com/dep2p/go-collab/pkg/interfaces"
)

// StorePrefix 身份数据的 kv 前缀
var StorePrefix = []byte("i/")

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config `optional:"true"`
	Engine engine.Engine  `optional:"true"`
}

// ModuleOutput 模块输出服务
type ModuleOutput struct {
	fx.Out

	Manager  *Manager
	Identity interfaces.Identity
}

// ProvideServices 提供模块服务
//
// 没有存储引擎或配置关闭持久化时使用内存身份。
func ProvideServices(in ModuleInput) (ModuleOutput, error) {
	var store *kv.Store
	persist := in.Config == nil || in.Config.Identity.Persist
	if in.Engine != nil && persist {
		store = kv.New(in.Engine, StorePrefix)
	}

	m := NewManager(store)
	if in.Config != nil && in.Config.Identity.Name != "" {
		if err := m.SetParticipantName(in.Config.Identity.Name); err != nil {
			return ModuleOutput{}, err
		}
	}

	logger.Debug("身份模块就绪", "id", m.ParticipantID(), "persist", store != nil)
	return ModuleOutput{Manager: m, Identity: m}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideServices),
	)
}
