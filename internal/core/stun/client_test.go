package stun

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/pion/stun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveBinding 启动一个只应答 Binding 请求的本地服务器
//
// mapped 为 nil 时回写请求方的真实地址。
func serveBinding(t *testing.T, mapped *net.UDPAddr, xor bool) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pc.Close() })

	go func() {
		buf := make([]byte, 1500)
		for {
			n, from, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			req := &stun.Message{Raw: append([]byte(nil), buf[:n]...)}
			if req.Decode() != nil || req.Type != stun.BindingRequest {
				continue
			}

			addr := from.(*net.UDPAddr)
			if mapped != nil {
				addr = mapped
			}
			var attr stun.Setter = &stun.XORMappedAddress{IP: addr.IP, Port: addr.Port}
			if !xor {
				attr = &stun.MappedAddress{IP: addr.IP, Port: addr.Port}
			}
			resp, err := stun.Build(
				stun.NewTransactionIDSetter(req.TransactionID),
				stun.BindingSuccess,
				attr,
				stun.Fingerprint,
			)
			if err != nil {
				return
			}
			_, _ = pc.WriteTo(resp.Raw, from)
		}
	}()
	return pc.LocalAddr().String()
}

func TestProbe_XORMapped(t *testing.T) {
	server := serveBinding(t, nil, true)

	c := NewClient([]string{server})
	res, err := c.Probe(context.Background())
	require.NoError(t, err)

	assert.Equal(t, server, res.Server)
	require.NotNil(t, res.Mapped)
	assert.True(t, res.Mapped.IP.Equal(net.IPv4(127, 0, 0, 1)))
	assert.Equal(t, res.Local.Port, res.Mapped.Port)
	assert.False(t, res.BehindNAT())
}

func TestProbe_LegacyMappedAddress(t *testing.T) {
	public := &net.UDPAddr{IP: net.IPv4(203, 0, 113, 7), Port: 40000}
	server := serveBinding(t, public, false)

	res, err := NewClient([]string{server}).Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Mapped.IP.Equal(public.IP))
	assert.Equal(t, 40000, res.Mapped.Port)
	assert.True(t, res.BehindNAT())
}

func TestProbe_FallsThroughDeadServer(t *testing.T) {
	dead, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	deadAddr := dead.LocalAddr().String()
	_ = dead.Close()

	live := serveBinding(t, nil, true)

	c := NewClient([]string{deadAddr, live})
	c.SetTimeout(200 * time.Millisecond)
	res, err := c.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live, res.Server)
}

func TestProbe_NoServers(t *testing.T) {
	_, err := NewClient(nil).Probe(context.Background())
	assert.ErrorIs(t, err, ErrNoServers)
}

func TestProbe_ContextCancelled(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err = NewClient([]string{pc.LocalAddr().String()}).Probe(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServersFromICE(t *testing.T) {
	got := ServersFromICE([]string{
		"stun:stun.l.google.com:19302",
		"stun:stun.example.org",
		"turn:turn.example.org:3478?transport=udp",
		"stun:10.0.0.1:3478?transport=udp",
		"",
	})
	assert.Equal(t, []string{
		"stun.l.google.com:19302",
		"stun.example.org:3478",
		"10.0.0.1:3478",
	}, got)
}
