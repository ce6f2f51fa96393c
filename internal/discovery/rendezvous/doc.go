// Package rendezvous 实现端点注册与信令中转
//
// # 模块概述
//
// 协作网格本身是无服务器的点对点网状结构，但建立连接前需要一个
// 会合点（Rendezvous Point）：参与者以端点名 "房间_参与者" 注册，
// 然后通过会合点交换 WebRTC 的 offer/answer，以及按房间前缀发现
// 同房间的其他端点。连接建立后的数据不再经过会合点。
//
// # 核心组件
//
//   - Client: 客户端，一次 Open 对应一次注册，提供 Send / Discover 与
//     入站信令流 Signals()、终止错误流 Errors()
//   - Point: 服务端 http.Handler，管理注册表并中转信令
//   - Registry: 端点名到在线连接的映射，先注册者获胜
//
// # 协议
//
// websocket 上的 JSON 帧，见 Signal：
//
//	客户端 ──GET /rendezvous?id=R1_user_a&token=...──▶ 会合点
//	客户端 ◀──────────── {"type":"OPEN"} ───────────── 会合点
//	客户端 ──{"type":"OFFER","dst":"R1_user_b",...}──▶ 会合点 ──▶ R1_user_b（src 被改写为 R1_user_a）
//	客户端 ──{"type":"DISCOVER","prefix":"R1_"}──────▶ 会合点
//	客户端 ◀──{"type":"PEERS","peers":["R1_user_b"]}── 会合点
//
// 目标端点不在线时会合点回复 EXPIRE。名称冲突回复 ID-TAKEN，
// 名称非法回复 INVALID-ID，随后关闭连接。
//
// # 错误
//
// 所有注册失败与会合点丢失都以 *SignalingError 返回，按 Kind 区分；
// 客户端不做任何自动重试或重连。
//
// # 并发安全
//
// Client 与 Point 的公共方法均并发安全。websocket 写操作由写锁
// （客户端）或单独的写协程（服务端）串行化。
package rendezvous
