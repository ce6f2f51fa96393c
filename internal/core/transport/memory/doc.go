// Package memory 提供进程内的会合网络实现
//
// Network 模拟会合点：端点名唯一，Dial 创建一对通道并异步打开，
// Discover 按前缀匹配已注册端点。用于单元测试与本地演示，
// 语义与 WebRTC 实现保持一致：
//
//   - Dial 立即返回处于 connecting 状态的通道
//   - 目标端点不存在时通道以 peer-unavailable 错误终止
//   - 任一端关闭，两端都收到 OnClose
//   - 端点 Fail 只终止注册，不影响已建立的通道
package memory
