package util

import (
	"net"
	"sync"

	"github.com/miekg/dns"
)

// TestResponseWriter records written messages. WriteErr, if set, is returned
// from the first WriteErrCount calls to WriteMsg (all calls if WriteErrCount is 0).
type TestResponseWriter struct {
	HadWrites bool
	LastMsg   *dns.Msg
	Msgs      []*dns.Msg

	WriteErr      error
	WriteErrCount int
	writeCalls    int

	LocalAddrVal  net.Addr
	RemoteAddrVal net.Addr

	lock sync.Mutex
}

var _ = dns.ResponseWriter(&TestResponseWriter{})

func (w *TestResponseWriter) WriteMsg(msg *dns.Msg) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.HadWrites = true
	w.writeCalls++
	if w.WriteErr != nil && (w.WriteErrCount == 0 || w.writeCalls <= w.WriteErrCount) {
		return w.WriteErr
	}

	w.LastMsg = msg
	w.Msgs = append(w.Msgs, msg)
	return nil
}

func (w *TestResponseWriter) WriteCalls() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.writeCalls
}

func (w *TestResponseWriter) Close() error {
	return nil
}

func (w *TestResponseWriter) Hijack() {
}

func (w *TestResponseWriter) Network() string {
	return w.LocalAddr().Network()
}

func (w *TestResponseWriter) LocalAddr() net.Addr {
	if w.LocalAddrVal == nil {
		return &net.UDPAddr{
			IP:   net.IPv4(127, 0, 0, 1),
			Port: 53,
		}
	}
	return w.LocalAddrVal
}

func (w *TestResponseWriter) RemoteAddr() net.Addr {
	if w.RemoteAddrVal == nil {
		return &net.UDPAddr{
			IP:   net.IPv4(127, 0, 0, 2),
			Port: 5053,
		}
	}
	return w.RemoteAddrVal
}

func (w *TestResponseWriter) TsigStatus() error {
	return nil
}

func (w *TestResponseWriter) TsigTimersOnly(timersOnly bool) {
}

func (w *TestResponseWriter) Write(data []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.HadWrites = true
	return len(data), nil
}
