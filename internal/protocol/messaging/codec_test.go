package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_Document(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	msg := NewDocument(json.RawMessage(`{"title":"问卷","questions":[]}`), "user_a", at)

	data, err := Encode(msg)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "document", wire["kind"])
	assert.Equal(t, "user_a", wire["senderId"])
	assert.EqualValues(t, 1700000000123, wire["sentAt"])

	got, err := Decode(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"问卷","questions":[]}`, string(got.Snapshot))
	assert.Equal(t, at, got.SentTime())
}

func TestEncode_WireFields(t *testing.T) {
	data, err := Encode(NewLock("q1", "user_a", "小王"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"lock","fieldId":"q1","holderId":"user_a","holderName":"小王"}`, string(data))

	data, err = Encode(NewUnlock("q1", "user_a"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"unlock","fieldId":"q1","holderId":"user_a"}`, string(data))

	data, err = Encode(NewPresence("user_a", "小王"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"presence","senderId":"user_a","name":"小王"}`, string(data))
}

func TestEncode_Invalid(t *testing.T) {
	_, err := Encode(NewLock("", "user_a", "x"))
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = Encode(nil)
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":            ``,
		"not json":         `hello`,
		"array":            `[1,2]`,
		"truncated":        `{"kind":"lock"`,
		"unknown kind":     `{"kind":"survey_update"}`,
		"no kind":          `{"fieldId":"q1"}`,
		"lock no field":    `{"kind":"lock","holderId":"user_a"}`,
		"unlock no holder": `{"kind":"unlock","fieldId":"q1"}`,
		"doc no sender":    `{"kind":"document","snapshot":{}}`,
		"doc no snapshot":  `{"kind":"document","senderId":"user_a"}`,
		"wrong type":       `{"kind":"lock","fieldId":7,"holderId":"user_a"}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(in))
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestDecode_NullSnapshot(t *testing.T) {
	m, err := Decode([]byte(`{"kind":"document","senderId":"user_a","snapshot":null,"sentAt":1}`))
	require.NoError(t, err)
	assert.Equal(t, "null", string(m.Snapshot))
}

func TestDecode_PresenceMinimal(t *testing.T) {
	msg, err := Decode([]byte(`{"kind":"presence"}`))
	require.NoError(t, err)
	assert.Equal(t, KindPresence, msg.Kind)
	assert.True(t, msg.SenderID.IsEmpty())
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	msg, err := Decode([]byte(` {"kind":"unlock","fieldId":"q1","holderId":"user_a","extra":true} `))
	require.NoError(t, err)
	assert.Equal(t, KindUnlock, msg.Kind)
}
