// Package presence 维护房间花名册
//
// 花名册 = 自己 + 所有已打开连接的参与者，自己排在第一位，
// 其余按 ID 排序。昵称来自对端的 presence 声明，未知时使用默认昵称。
// 未加入房间时花名册为空。
package presence
