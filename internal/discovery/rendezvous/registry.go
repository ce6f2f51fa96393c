package rendezvous

import (
	"sort"
	"strings"
	"sync"
)

// Registry 端点注册表
//
// 名称唯一，先注册者获胜。Remove 只删除与传入连接相同的条目，
// 避免延迟注销误删同名的新注册。
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*peerConn
	max     int
}

// NewRegistry 创建注册表，max <= 0 表示不限
func NewRegistry(max int) *Registry {
	return &Registry{
		entries: make(map[string]*peerConn),
		max:     max,
	}
}

// Add 注册端点
func (r *Registry) Add(name string, pc *peerConn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return ErrUnavailableID
	}
	if r.max > 0 && len(r.entries) >= r.max {
		return ErrMaxRegistrationsExceeded
	}
	r.entries[name] = pc
	return nil
}

// Remove 注销端点
func (r *Registry) Remove(name string, pc *peerConn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.entries[name]
	if !ok || cur != pc {
		return false
	}
	delete(r.entries, name)
	return true
}

// Get 查找端点
func (r *Registry) Get(name string) (*peerConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.entries[name]
	return pc, ok
}

// Has 端点是否在线
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Match 按前缀列出在线端点（已排序），exclude 不计入结果
func (r *Registry) Match(prefix, exclude string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0)
	for name := range r.entries {
		if name == exclude || !strings.HasPrefix(name, prefix) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len 在线端点数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// snapshot 返回当前所有连接
func (r *Registry) snapshot() []*peerConn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*peerConn, 0, len(r.entries))
	for _, pc := range r.entries {
		out = append(out, pc)
	}
	return out
}
