// Package lock 实现建议性的字段锁
//
// # 语义
//
// 加锁是乐观的：本地立即记录并广播，不等待任何确认。收到远端的
// lock 消息时经 Arbiter 裁决后覆盖本地条目；默认的 LastClaimWins
// 总是接受，即最后送达的声明获胜。因此同一传播窗口内两个参与者
// 可能短暂地都认为自己持有同一字段，所有 lock 广播送达后收敛到
// 单一持有者。
//
// 解锁只删除自己持有的条目，但总是广播；远端解锁只在当前持有者
// 与发送者一致时删除。
//
// # 断开回收
//
// Coordinator 维护 holderID → 字段集合 的索引，参与者断开时
// ReleaseHolder 删除其持有的全部条目，避免字段被永久锁住。
//
// # 迟到者
//
// 新连接打开时 Announce 把本地持有的锁以普通 lock 消息单播给对端。
package lock
