package docsync

import "errors"

var (
	// ErrEmptySnapshot 快照为空
	ErrEmptySnapshot = errors.New("docsync: empty snapshot")

	// ErrInvalidSnapshot 快照不是合法 JSON
	ErrInvalidSnapshot = errors.New("docsync: snapshot is not valid json")
)
