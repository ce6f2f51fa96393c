// Package identity 管理本地参与者身份
//
// 参与者 ID 首次使用时随机生成（"user_" + 9 位小写字母数字），
// 连同昵称一起保存在 kv 前缀 i/ 下，之后每次启动复用。
// 存储不可用时退化为进程内身份，读取接口从不失败。
package identity
