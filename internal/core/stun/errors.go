package stun

import "errors"

var (
	// ErrNoServers 没有可用的 STUN 服务器
	ErrNoServers = errors.New("stun: no servers")

	// ErrNoMappedAddress 响应中没有映射地址
	ErrNoMappedAddress = errors.New("stun: no mapped address in response")

	// ErrTransactionMismatch 响应与请求的事务 ID 不一致
	ErrTransactionMismatch = errors.New("stun: transaction id mismatch")
)
