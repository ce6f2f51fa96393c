package badger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-collab/internal/core/storage/engine"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("storage/badger")

// Engine BadgerDB 存储引擎
type Engine struct {
	db     *badger.DB
	config *engine.Config
	closed atomic.Bool

	reads   atomic.Int64
	writes  atomic.Int64
	deletes atomic.Int64

	stop   context.CancelFunc
	stopCh <-chan struct{}
	gcWg   sync.WaitGroup
	gcOnce sync.Once
}

// New 打开（必要时创建）数据库
func New(cfg *engine.Config) (*Engine, error) {
	if cfg == nil {
		return nil, engine.ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, err
	}

	var l badger.Logger = cfg.Logger
	if cfg.Logger == nil {
		l = slogAdapter{}
	}
	opts := badger.DefaultOptions(cfg.Path).
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithBlockCacheSize(cfg.BlockCacheSize).
		WithLogger(l)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("数据库已打开", "path", cfg.Path)

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		db:     db,
		config: cfg,
		stop:   cancel,
		stopCh: ctx.Done(),
	}, nil
}

// Start 启动 value log 回收，可重复调用
func (e *Engine) Start() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if e.config.GCInterval > 0 {
		e.gcOnce.Do(func() {
			e.gcWg.Add(1)
			go e.gcLoop()
		})
	}
	return nil
}

func (e *Engine) gcLoop() {
	defer e.gcWg.Done()
	ticker := time.NewTicker(e.config.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			// 一直回收到没有可重写的文件
			for !e.closed.Load() {
				if err := e.db.RunValueLogGC(e.config.GCDiscardRatio); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						logger.Debug("value log 回收结束", "error", err)
					}
					break
				}
			}
		}
	}
}

// Get 读取键，不存在时返回 engine.ErrNotFound
func (e *Engine) Get(key []byte) ([]byte, error) {
	if err := e.check(key); err != nil {
		return nil, err
	}

	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	e.reads.Add(1)
	if err != nil {
		return nil, convertError(err)
	}
	return value, nil
}

// Put 写入键
func (e *Engine) Put(key, value []byte) error {
	if err := e.check(key); err != nil {
		return err
	}
	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err == nil {
		e.writes.Add(1)
	}
	return convertError(err)
}

// Delete 删除键，键不存在时不报错
func (e *Engine) Delete(key []byte) error {
	if err := e.check(key); err != nil {
		return err
	}
	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err == nil {
		e.deletes.Add(1)
	}
	return convertError(err)
}

// Has 检查键是否存在
func (e *Engine) Has(key []byte) (bool, error) {
	_, err := e.Get(key)
	switch {
	case err == nil:
		return true, nil
	case engine.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Stats 读写计数
func (e *Engine) Stats() engine.Stats {
	return engine.Stats{
		Reads:   e.reads.Load(),
		Writes:  e.writes.Load(),
		Deletes: e.deletes.Load(),
	}
}

// Close 停止回收并关闭数据库，可重复调用
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.stop()
	e.gcWg.Wait()
	return e.db.Close()
}

func (e *Engine) check(key []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return nil
}

func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return engine.ErrNotFound
	case errors.Is(err, badger.ErrEmptyKey):
		return engine.ErrEmptyKey
	default:
		return err
	}
}

var _ engine.Engine = (*Engine)(nil)
