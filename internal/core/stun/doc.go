// Package stun 用 STUN Binding 请求探测本机的公网映射地址
//
// WebRTC 数据通道依赖 ICE 打洞，探测结果可以帮助判断两端能否直连：
// 映射地址与本地地址相同说明没有 NAT。服务器列表沿用网格配置中的
// ICE 服务器，turn: 地址会被跳过。
//
//	c := stun.NewClient(stun.ServersFromICE(cfg.Mesh.ICEServers))
//	res, err := c.Probe(ctx)
package stun
