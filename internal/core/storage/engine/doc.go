// Package engine 定义存储引擎接口
//
// Engine 在 pkg/interfaces.Engine 之上增加生命周期与读写计数，
// 默认实现为 engine/badger。
package engine
