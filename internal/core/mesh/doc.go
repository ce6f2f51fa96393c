// Package mesh 管理房间内的点对点连接池
//
// Pool 以远端 ParticipantID 为键持有连接，负责：
//
//   - 接纳入站通道（Accept）与发起出站通道（ConnectTo）
//   - 单播（Send）与广播（Broadcast），发送失败只记录不返回
//   - 把通道的 open / message / close / error 事件转交给 Listener
//   - 同一对参与者之间的重复连接裁决
//
// # 重复连接
//
// 双方同时拨号时会出现两条连接。保留由较小 ParticipantID 发起的那条，
// 双方按同一规则裁决，结果一致。同方向的重复连接保留较新的一条。
// 被替换的连接静默关闭，不触发 ConnectionClosed。
//
// # 回调
//
// Listener 的方法在通道事件协程中调用，调用时不持有连接池的锁。
package mesh
