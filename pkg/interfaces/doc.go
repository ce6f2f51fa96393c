// Package interfaces 定义 go-collab 的公共接口
//
// 实现分散在 internal/ 下，上层只依赖这里的接口：
//   - transport.go - Network / Endpoint / Channel（会合点注册与点对点数据通道）
//   - identity.go  - Identity（本地参与者身份）
//   - storage.go   - Engine（键值存储引擎）
//
// 传输有两套实现：internal/core/transport/webrtc（会合点 + WebRTC 数据通道）
// 与 internal/core/transport/memory（进程内，用于测试）。
package interfaces
