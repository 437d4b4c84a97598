package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/handler/generator"
	"github.com/Doridian/synthDNS/server"
	"github.com/Doridian/synthDNS/util"
	"github.com/Doridian/synthDNS/zone"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHandler(t *testing.T, root string) *handler.Handler {
	zones, err := zone.New(root)
	require.NoError(t, err)

	gens, err := generator.New(zones, generator.Config{})
	require.NoError(t, err)

	hdl, err := handler.New(zones, util.NewRequestCounter(), gens, zaptest.NewLogger(t))
	require.NoError(t, err)
	return hdl
}

func startTestServer(t *testing.T, hdl dns.Handler) *server.Server {
	srv := server.NewServer(hdl, zaptest.NewLogger(t))
	srv.UDP = []string{"127.0.0.1:0"}
	srv.TCP = []string{"127.0.0.1:0"}
	srv.TCPTimeout = time.Second
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return srv
}

func exchange(t *testing.T, network string, addr string, msg *dns.Msg) *dns.Msg {
	client := &dns.Client{
		Net:     network,
		Timeout: 2 * time.Second,
	}

	var reply *dns.Msg
	var err error
	// The listener may still be starting up
	for i := 0; i < 20; i++ {
		reply, _, err = client.Exchange(msg, addr)
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.NoError(t, err)
	return reply
}

func TestServeUDPAndTCP(t *testing.T) {
	srv := startTestServer(t, newTestHandler(t, "example.com."))

	addrs := srv.Addrs()
	require.Len(t, addrs, 2)

	for i, network := range []string{"udp", "tcp"} {
		msg := &dns.Msg{}
		msg.SetQuestion("counter.example.com.", dns.TypeTXT)

		reply := exchange(t, network, addrs[i].String(), msg)
		assert.Equal(t, dns.RcodeSuccess, reply.Rcode, network)
		assert.True(t, reply.Authoritative, network)
		require.Len(t, reply.Answer, 1, network)
		assert.IsType(t, &dns.TXT{}, reply.Answer[0])

		msg = &dns.Msg{}
		msg.SetQuestion("www.example.com.", dns.TypeA)
		reply = exchange(t, network, addrs[i].String(), msg)
		assert.Equal(t, dns.RcodeNameError, reply.Rcode, network)
	}
}

func TestServeAnswersBadOpcode(t *testing.T) {
	srv := startTestServer(t, newTestHandler(t, "example.com."))

	msg := &dns.Msg{}
	msg.SetQuestion("counter.example.com.", dns.TypeTXT)
	msg.Opcode = dns.OpcodeNotify

	reply := exchange(t, "udp", srv.Addrs()[0].String(), msg)
	assert.Equal(t, dns.RcodeServerFailure, reply.Rcode)
}

func TestSetHandler(t *testing.T) {
	srv := startTestServer(t, newTestHandler(t, "example.com."))
	addr := srv.Addrs()[0].String()

	msg := &dns.Msg{}
	msg.SetQuestion("coin.example.org.", dns.TypeTXT)
	reply := exchange(t, "udp", addr, msg)
	assert.Equal(t, dns.RcodeServerFailure, reply.Rcode)

	srv.SetHandler(newTestHandler(t, "example.org."))

	reply = exchange(t, "udp", addr, msg)
	assert.Equal(t, dns.RcodeSuccess, reply.Rcode)
	require.Len(t, reply.Answer, 1)
}

func TestServeWithoutListen(t *testing.T) {
	srv := server.NewServer(newTestHandler(t, "example.com."), nil)
	assert.ErrorIs(t, srv.Serve(context.Background()), server.ErrNotListening)
}

func TestListenError(t *testing.T) {
	srv := server.NewServer(newTestHandler(t, "example.com."), nil)
	srv.UDP = []string{"127.0.0.1:0"}
	srv.TCP = []string{"not an address"}
	assert.Error(t, srv.Listen())
}
