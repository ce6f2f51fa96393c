package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode 校验并序列化消息
func Encode(m *Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: kind=%q", err, kindOf(m))
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("messaging: encode %s: %w", m.Kind, err)
	}
	return data, nil
}

// Decode 反序列化并校验消息
//
// 返回的错误都包装了 ErrMalformedMessage。
func Decode(data []byte) (*Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: not a json object", ErrMalformedMessage)
	}

	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: kind=%q", err, m.Kind)
	}
	return &m, nil
}

func kindOf(m *Message) Kind {
	if m == nil {
		return ""
	}
	return m.Kind
}
