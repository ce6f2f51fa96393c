package identity

import "errors"

var (
	// ErrEmptyName 昵称为空
	ErrEmptyName = errors.New("identity: empty name")

	// ErrNameTooLong 昵称过长
	ErrNameTooLong = errors.New("identity: name too long")
)
