package stun

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pion/stun"
	"go.uber.org/multierr"

	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("core/stun")

// DefaultTimeout 单个服务器的请求超时
const DefaultTimeout = 3 * time.Second

// Result 一次探测结果
type Result struct {
	// Server 应答的服务器
	Server string

	// Local 本地 UDP 地址
	Local *net.UDPAddr

	// Mapped 服务器看到的地址
	Mapped *net.UDPAddr

	// RTT 请求往返时间
	RTT time.Duration
}

// BehindNAT 映射端口与本地端口不同，或映射 IP 不是本机地址
func (r Result) BehindNAT() bool {
	if r.Local == nil || r.Mapped == nil {
		return true
	}
	if r.Local.Port != r.Mapped.Port {
		return true
	}
	if r.Local.IP.IsUnspecified() {
		return !isLocalIP(r.Mapped.IP)
	}
	return !r.Local.IP.Equal(r.Mapped.IP)
}

// Client STUN 客户端
type Client struct {
	servers []string
	timeout time.Duration
}

// NewClient 创建客户端，servers 为 host:port 列表
func NewClient(servers []string) *Client {
	return &Client{
		servers: servers,
		timeout: DefaultTimeout,
	}
}

// SetTimeout 设置单个服务器的超时
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Servers 服务器列表
func (c *Client) Servers() []string {
	return append([]string(nil), c.servers...)
}

// Probe 依次询问服务器，返回第一个成功的结果
func (c *Client) Probe(ctx context.Context) (Result, error) {
	if len(c.servers) == 0 {
		return Result{}, ErrNoServers
	}

	var errs error
	for _, server := range c.servers {
		res, err := c.query(ctx, server)
		if err == nil {
			logger.Debug("STUN 探测成功", "server", server, "mapped", res.Mapped, "rtt", res.RTT)
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		logger.Debug("STUN 服务器无应答", "server", server, "error", err)
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", server, err))
	}
	return Result{}, errs
}

func (c *Client) query(ctx context.Context, server string) (Result, error) {
	raddr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return Result{}, fmt.Errorf("resolve: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return Result{}, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	req, err := stun.Build(stun.TransactionID, stun.BindingRequest, stun.Fingerprint)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	if _, err := req.WriteTo(conn); err != nil {
		return Result{}, fmt.Errorf("send: %w", err)
	}

	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	if err != nil {
		return Result{}, fmt.Errorf("read: %w", err)
	}
	rtt := time.Since(start)

	res := &stun.Message{Raw: append([]byte(nil), buf[:n]...)}
	if err := res.Decode(); err != nil {
		return Result{}, fmt.Errorf("decode: %w", err)
	}
	if res.TransactionID != req.TransactionID {
		return Result{}, ErrTransactionMismatch
	}

	mapped, err := mappedAddress(res)
	if err != nil {
		return Result{}, err
	}
	local, _ := conn.LocalAddr().(*net.UDPAddr)
	return Result{Server: server, Local: local, Mapped: mapped, RTT: rtt}, nil
}

// mappedAddress 优先 XOR-MAPPED-ADDRESS，旧服务器回退 MAPPED-ADDRESS
func mappedAddress(m *stun.Message) (*net.UDPAddr, error) {
	var xor stun.XORMappedAddress
	if err := xor.GetFrom(m); err == nil {
		return &net.UDPAddr{IP: xor.IP, Port: xor.Port}, nil
	}
	var plain stun.MappedAddress
	if err := plain.GetFrom(m); err == nil {
		return &net.UDPAddr{IP: plain.IP, Port: plain.Port}, nil
	}
	return nil, ErrNoMappedAddress
}

// ServersFromICE 把 ICE 服务器 URL 转为 host:port 列表
//
// 只保留 stun: 地址，缺省端口为 3478，查询参数被丢弃。
func ServersFromICE(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		rest, ok := strings.CutPrefix(strings.TrimSpace(u), "stun:")
		if !ok || rest == "" {
			continue
		}
		if i := strings.IndexByte(rest, '?'); i >= 0 {
			rest = rest[:i]
		}
		if _, _, err := net.SplitHostPort(rest); err != nil {
			rest = net.JoinHostPort(rest, "3478")
		}
		out = append(out, rest)
	}
	return out
}

func isLocalIP(ip net.IP) bool {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}
	for _, a := range addrs {
		if n, ok := a.(*net.IPNet); ok && n.IP.Equal(ip) {
			return true
		}
	}
	return false
}
