package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dep2p/go-collab"
	"github.com/dep2p/go-collab/internal/core/stun"
	"github.com/dep2p/go-collab/pkg/types"
)

// errQuit 用户请求退出
var errQuit = errors.New("quit")

// shell 交互式命令行
//
// 回调在会话的通知协程中执行，所有输出经 outMu 串行化。
type shell struct {
	sess *collab.Session
	stun *stun.Client

	outMu sync.Mutex
	out   io.Writer

	docMu sync.Mutex
	doc   json.RawMessage
}

func newShell(sess *collab.Session, probe *stun.Client, out io.Writer) *shell {
	sh := &shell{sess: sess, stun: probe, out: out}
	sess.SetCallbacks(collab.Callbacks{
		OnDocumentUpdate: sh.onDocument,
		OnPresenceUpdate: sh.onPresence,
		OnLockChange:     sh.onLock,
		OnConnectionStatus: func(connected bool, size int) {
			sh.printf("« 连接状态: connected=%v 在线=%d\n", connected, size)
		},
	})
	return sh
}

// run 逐行读取命令直到 EOF、quit 或 ctx 取消
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	sh.printf("输入 help 查看命令\n")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := sh.exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				sh.printf("错误: %v\n", err)
			}
		}
	}
}

// exec 执行一行命令
func (sh *shell) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return nil
	case "help":
		sh.printHelp()
	case "join":
		if arg == "" {
			return errors.New("用法: join <房间>")
		}
		if err := sh.sess.JoinRoom(ctx, types.RoomID(arg)); err != nil {
			return err
		}
		sh.printf("已加入房间 %s，身份 %s\n", arg, sh.sess.Self().ID)
	case "leave":
		return sh.sess.LeaveRoom()
	case "doc":
		if arg == "" {
			return errors.New("用法: doc <json>")
		}
		if !json.Valid([]byte(arg)) {
			return errors.New("文档不是合法的 JSON")
		}
		raw := json.RawMessage(arg)
		if err := sh.sess.UpdateDocument(raw); err != nil {
			return err
		}
		sh.setDoc(raw)
	case "show":
		doc := sh.document()
		if doc == nil {
			sh.printf("（尚无文档）\n")
			return nil
		}
		sh.printf("%s\n", doc)
	case "lock":
		if arg == "" {
			return errors.New("用法: lock <字段>")
		}
		return sh.sess.LockField(types.FieldID(arg))
	case "unlock":
		if arg == "" {
			return errors.New("用法: unlock <字段>")
		}
		return sh.sess.UnlockField(types.FieldID(arg))
	case "connect":
		if arg == "" {
			return errors.New("用法: connect <端点>")
		}
		return sh.sess.ConnectTo(ctx, arg)
	case "who":
		sh.printRoster(sh.sess.Roster())
	case "locks":
		sh.printLocks()
	case "name":
		if err := sh.sess.SetName(arg); err != nil {
			return err
		}
		sh.printf("昵称已改为 %s\n", sh.sess.Self().Name)
	case "netinfo":
		return sh.netinfo(ctx)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("未知命令 %q", cmd)
	}
	return nil
}

// netinfo 通过 STUN 查询本机的公网映射地址
func (sh *shell) netinfo(ctx context.Context) error {
	if sh.stun == nil || len(sh.stun.Servers()) == 0 {
		return stun.ErrNoServers
	}
	res, err := sh.stun.Probe(ctx)
	if err != nil {
		return err
	}
	sh.printf("STUN 服务器: %s\n", res.Server)
	sh.printf("本地地址:   %s\n", res.Local)
	sh.printf("映射地址:   %s\n", res.Mapped)
	sh.printf("往返时延:   %s\n", res.RTT.Round(time.Millisecond))
	sh.printf("位于 NAT 后: %v\n", res.BehindNAT())
	return nil
}

// ============================================================================
//                              回调
// ============================================================================

func (sh *shell) onDocument(snapshot json.RawMessage, sender types.ParticipantID) {
	sh.setDoc(snapshot)
	sh.printf("« 文档更新 来自 %s: %s\n", sender, snapshot)
}

func (sh *shell) onPresence(roster []types.Participant, connected bool) {
	sh.printf("« 在线成员变化 (connected=%v)\n", connected)
	sh.printRoster(roster)
}

func (sh *shell) onLock(field types.FieldID, holder types.ParticipantID, holderName string, locked bool) {
	if locked {
		sh.printf("« %s 被 %s(%s) 锁定\n", field, holderName, holder)
		return
	}
	sh.printf("« %s 已解锁\n", field)
}

// ============================================================================
//                              输出
// ============================================================================

func (sh *shell) printf(format string, args ...any) {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *shell) printRoster(roster []types.Participant) {
	if len(roster) == 0 {
		sh.printf("  （未加入房间）\n")
		return
	}
	for _, p := range roster {
		mark := ""
		if p.IsSelf {
			mark = " (我)"
		}
		sh.printf("  • %s %s%s\n", p.ID, p.Name, mark)
	}
}

func (sh *shell) printLocks() {
	entries := sh.sess.Locks()
	if len(entries) == 0 {
		sh.printf("  （没有被锁定的字段）\n")
		return
	}
	for _, e := range entries {
		sh.printf("  • %s ← %s(%s) 于 %s\n", e.FieldID, e.HolderName, e.HolderID, e.AcquiredAt.Format(time.TimeOnly))
	}
}

func (sh *shell) printHelp() {
	sh.printf(`命令:
  join <房间>       加入房间
  leave             离开房间
  doc <json>        广播整份文档
  show              显示最近一份文档
  lock <字段>       锁定字段
  unlock <字段>     解锁字段
  connect <端点>    手动连接同房间端点
  who               在线成员
  locks             锁表
  name <昵称>       修改昵称
  netinfo           查询 STUN 映射地址
  quit              退出
`)
}

func (sh *shell) setDoc(doc json.RawMessage) {
	sh.docMu.Lock()
	sh.doc = append(json.RawMessage(nil), doc...)
	sh.docMu.Unlock()
}

func (sh *shell) document() json.RawMessage {
	sh.docMu.Lock()
	defer sh.docMu.Unlock()
	return sh.doc
}
