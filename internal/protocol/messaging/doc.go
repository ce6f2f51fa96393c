// Package messaging 定义协作网格上的消息格式
//
// 每条消息是一个 JSON 对象，按 kind 区分：
//
//	{"kind":"document","snapshot":{...},"senderId":"user_x","sentAt":1700000000000}
//	{"kind":"lock","fieldId":"q1","holderId":"user_x","holderName":"小王"}
//	{"kind":"unlock","fieldId":"q1","holderId":"user_x"}
//	{"kind":"presence","senderId":"user_x","name":"小王"}
//
// Decode 在解码时完成校验，任何不符合格式的消息都返回
// ErrMalformedMessage；调用方丢弃该消息，连接保持打开。
// Router 按 kind 把解码后的消息分发给已注册的处理器。
package messaging
