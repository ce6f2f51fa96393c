// Package metrics 提供 Prometheus 监控指标
//
// 两组指标：
//
//   - Session: 协作会话（消息收发、发送失败、格式错误、连接数、锁数）
//   - Point: 会合点服务端（在线端点、拒绝注册、信令转发与丢弃）
//
// 传入 nil Registerer 时指标照常计数但不注册，适合测试与关闭指标的场景。
// 所有方法对 nil 接收者安全。
package metrics
