// Package collab 提供点对点实时协作会话
//
// 同一房间中的参与者通过会合点互相发现，之后直接建立数据通道组成网格，
// 在网格上广播整份文档快照、建议性字段锁与在场信息。没有中心服务器
// 转发业务数据，会合点只负责注册与信令。
//
// # 快速开始
//
//	app, err := collab.NewApp(config.NewConfig(), fx.Populate(&session))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = app.Start(ctx)
//
//	session.OnDocumentUpdate(func(snapshot json.RawMessage, from types.ParticipantID) {
//	    // 用 snapshot 整体替换本地文档
//	})
//	if err := session.JoinRoom(ctx, "survey-42"); err != nil {
//	    log.Fatal(err)
//	}
//	_ = session.LockField("q1")
//	_ = session.UpdateDocument(doc)
//
// 也可以不用 fx，直接组装：
//
//	s := collab.New(network, identity, collab.WithAutoDiscover(true))
//	defer s.Close()
//
// # 一致性
//
//   - 文档：最后送达的快照胜出，不做合并，不会应用自己的广播
//   - 字段锁：乐观加锁，后到的声明覆盖先到的，不保证全网互斥
//   - 断开：对端断开后其持有的锁在同一次通知周期内全部释放
//
// # 回调
//
// 四类回调各自最多一个活动处理器，重新注册会覆盖旧的。回调在会话的
// 通知协程上按状态变化顺序执行，不持有会话锁，可以在回调中调用会话方法。
//
// # 文件组织
//
//   - session.go: Session 生命周期与操作
//   - room.go: 单次加入的房间状态与网络事件处理
//   - observers.go: 回调注册
//   - options.go: 构造选项
//   - fx.go: fx 组装
package collab
