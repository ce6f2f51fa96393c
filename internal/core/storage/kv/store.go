package kv

import (
	"github.com/dep2p/go-collab/pkg/interfaces"
)

// Store 在引擎上按键前缀隔离出的一块命名空间
type Store struct {
	engine interfaces.Engine
	prefix []byte
}

// New 创建 Store，所有键自动加上 prefix
func New(eng interfaces.Engine, prefix []byte) *Store {
	return &Store{
		engine: eng,
		prefix: append([]byte(nil), prefix...),
	}
}

func (s *Store) key(k []byte) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	return append(append(out, s.prefix...), k...)
}

// Get 读取键
func (s *Store) Get(k []byte) ([]byte, error) {
	return s.engine.Get(s.key(k))
}

// Put 写入键
func (s *Store) Put(k, value []byte) error {
	return s.engine.Put(s.key(k), value)
}

// Delete 删除键
func (s *Store) Delete(k []byte) error {
	return s.engine.Delete(s.key(k))
}

// Has 检查键是否存在
func (s *Store) Has(k []byte) (bool, error) {
	return s.engine.Has(s.key(k))
}

// GetString 读取字符串值
func (s *Store) GetString(k []byte) (string, error) {
	data, err := s.Get(k)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PutString 写入字符串值
func (s *Store) PutString(k []byte, value string) error {
	return s.Put(k, []byte(value))
}
