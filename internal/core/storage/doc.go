// Package storage 提供本地持久化存储服务
//
// 基于 BadgerDB，通过 kv.Store 的键前缀隔离各组件数据。
// 当前唯一的使用方是参与者身份（前缀 i/）。
//
//	identity.Manager
//	       │
//	       ▼
//	   kv.Store (i/)
//	       │
//	       ▼
//	 engine/badger
package storage
