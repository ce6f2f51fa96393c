// Package webrtc 基于 pion/webrtc 实现会合网络
//
// 端点通过会合点客户端注册，并借助会合点交换 SDP：
//
//	发起方                         会合点                         接收方
//	CreateDataChannel
//	CreateOffer + 收集候选完成
//	OFFER{connectionId,payload} ──▶ 改写 src 转发 ──────────────▶ SetRemoteDescription
//	                                                              CreateAnswer + 收集候选完成
//	SetRemoteDescription ◀───────── 转发 ◀──── ANSWER{connectionId,payload}
//	DataChannel OnOpen                                            OnDataChannel → OnOpen
//
// 使用非 trickle ICE：offer 与 answer 在候选收集完成后一次性发送，
// CANDIDATE 信令被忽略。目标端点不在线时会合点回复 EXPIRE，
// 对应通道以 peer-unavailable 错误终止；应答超时以 ErrDialTimeout 终止。
//
// 会合点丢失只终止注册（Errors 投递一次），已建立的数据通道不受影响。
package webrtc
