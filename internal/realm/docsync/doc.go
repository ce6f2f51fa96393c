// Package docsync 实现全量文档快照同步
//
// 每次本地修改都把整份文档广播给所有已打开的连接；收到的快照直接
// 替换本地文档，最后送达者获胜。不做差分、合并或因果检查。
// 发送方自己的广播回显被丢弃。
package docsync
