// Package badger 用 BadgerDB 实现 engine.Engine
//
//	db, err := badger.New(engine.DefaultConfig("/data/collab.db"))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
// badger 自身的日志转发到 storage/badger 组件，Info 级降为 Debug。
package badger
