package lock

import "errors"

var (
	// ErrEmptyField 字段 ID 为空
	ErrEmptyField = errors.New("lock: empty field id")

	// ErrRejected 裁决器拒绝了本地加锁
	ErrRejected = errors.New("lock: claim rejected by arbiter")
)
