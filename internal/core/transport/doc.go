// Package transport 组装会合网络
//
// 子包：
//
//   - events: 通道事件缓存与有序派发
//   - webrtc: 基于 pion/webrtc 与会合点的实现（默认）
//   - memory: 进程内实现，用于测试与本地演示
//
// # Fx 模块集成
//
//	app := fx.New(
//	    transport.Module(),
//	    fx.Invoke(func(n interfaces.Network) { ... }),
//	)
package transport
