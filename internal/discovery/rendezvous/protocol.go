package rendezvous

import (
	"encoding/json"
	"regexp"
)

// SignalType 信令类型
type SignalType string

const (
	// SignalOpen 注册成功
	SignalOpen SignalType = "OPEN"
	// SignalIDTaken 端点名已被占用
	SignalIDTaken SignalType = "ID-TAKEN"
	// SignalInvalidID 端点名非法
	SignalInvalidID SignalType = "INVALID-ID"
	// SignalError 会合点错误
	SignalError SignalType = "ERROR"

	// SignalOffer 连接请求（携带 SDP offer）
	SignalOffer SignalType = "OFFER"
	// SignalAnswer 连接应答（携带 SDP answer）
	SignalAnswer SignalType = "ANSWER"
	// SignalCandidate ICE 候选
	SignalCandidate SignalType = "CANDIDATE"
	// SignalLeave 放弃连接
	SignalLeave SignalType = "LEAVE"
	// SignalExpire 目标端点不在线
	SignalExpire SignalType = "EXPIRE"

	// SignalDiscover 按前缀查询在线端点
	SignalDiscover SignalType = "DISCOVER"
	// SignalPeers 查询结果
	SignalPeers SignalType = "PEERS"
)

// Relayed 是否为需要转发给 dst 的信令
func (t SignalType) Relayed() bool {
	switch t {
	case SignalOffer, SignalAnswer, SignalCandidate, SignalLeave:
		return true
	default:
		return false
	}
}

// Signal 会合点信令帧
type Signal struct {
	Type         SignalType      `json:"type"`
	Src          string          `json:"src,omitempty"`
	Dst          string          `json:"dst,omitempty"`
	ConnectionID string          `json:"connectionId,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Prefix       string          `json:"prefix,omitempty"`
	Peers        []string        `json:"peers,omitempty"`
	RequestID    string          `json:"requestId,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// MaxEndpointLength 端点名最大长度
const MaxEndpointLength = 128

var endpointPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidEndpoint 检查端点名是否合法
func ValidEndpoint(name string) bool {
	return len(name) > 0 && len(name) <= MaxEndpointLength && endpointPattern.MatchString(name)
}
