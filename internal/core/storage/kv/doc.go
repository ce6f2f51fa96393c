// Package kv 提供带前缀隔离的键值存储
//
// # 键空间
//
//   - i/ - 参与者身份（identity）
//
// # 使用示例
//
//	store := kv.New(eng, []byte("i/"))
//	store.PutString([]byte("participant/id"), "user_k3j9x0a2b")  // 实际键: i/participant/id
package kv
