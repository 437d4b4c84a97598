package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Doridian/synthDNS/util"
	"github.com/miekg/dns"
	"go.uber.org/zap"
)

var ErrNotListening = errors.New("server is not listening")

type handlerRef struct {
	handler dns.Handler
}

type Server struct {
	UDP        []string
	TCP        []string
	TCPTimeout time.Duration

	log     *zap.Logger
	handler atomic.Pointer[handlerRef]

	lock    sync.Mutex
	servers []*dns.Server
}

func NewServer(handler dns.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	srv := &Server{
		TCPTimeout: util.DefaultTimeout,
		log:        log,
	}
	srv.SetHandler(handler)
	return srv
}

// SetHandler swaps the handler for all following queries.
func (s *Server) SetHandler(handler dns.Handler) {
	s.handler.Store(&handlerRef{handler: handler})
}

func (s *Server) ServeDNS(wr dns.ResponseWriter, msg *dns.Msg) {
	s.handler.Load().handler.ServeDNS(wr, msg)
}

// Listen binds all sockets and then drops privileges.
func (s *Server) Listen() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	servers := make([]*dns.Server, 0, len(s.UDP)+len(s.TCP))
	closeAll := func() {
		for _, srv := range servers {
			if srv.PacketConn != nil {
				_ = srv.PacketConn.Close()
			}
			if srv.Listener != nil {
				_ = srv.Listener.Close()
			}
		}
	}

	for _, addr := range s.UDP {
		pc, err := net.ListenPacket("udp", addr)
		if err != nil {
			closeAll()
			return err
		}
		servers = append(servers, s.newDNSServer("udp", pc, nil))
		s.log.Info("Listening", zap.String("net", "udp"), zap.Stringer("addr", pc.LocalAddr()))
	}

	for _, addr := range s.TCP {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			closeAll()
			return err
		}
		servers = append(servers, s.newDNSServer("tcp", nil, l))
		s.log.Info("Listening", zap.String("net", "tcp"), zap.Stringer("addr", l.Addr()))
	}

	s.servers = servers
	dropPrivs(s.log)
	return nil
}

func (s *Server) newDNSServer(network string, pc net.PacketConn, l net.Listener) *dns.Server {
	srv := &dns.Server{
		Net:           network,
		PacketConn:    pc,
		Listener:      l,
		Handler:       s,
		UDPSize:       dns.MaxMsgSize,
		ReadTimeout:   util.DefaultTimeout,
		WriteTimeout:  util.DefaultTimeout,
		MsgAcceptFunc: acceptAll,
	}

	if l != nil {
		timeout := s.TCPTimeout
		srv.ReadTimeout = timeout
		srv.WriteTimeout = timeout
		srv.IdleTimeout = func() time.Duration {
			return timeout
		}
	}

	return srv
}

// Bad opcodes and responses are answered by the handler, not dropped.
func acceptAll(dh dns.Header) dns.MsgAcceptAction {
	return dns.MsgAccept
}

// Addrs returns the bound addresses, UDP first.
func (s *Server) Addrs() []net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()

	addrs := make([]net.Addr, 0, len(s.servers))
	for _, srv := range s.servers {
		if srv.PacketConn != nil {
			addrs = append(addrs, srv.PacketConn.LocalAddr())
		} else {
			addrs = append(addrs, srv.Listener.Addr())
		}
	}
	return addrs
}

// Serve runs until ctx is done or a socket fails, then shuts every socket down.
func (s *Server) Serve(ctx context.Context) error {
	s.lock.Lock()
	servers := s.servers
	s.lock.Unlock()

	if len(servers) == 0 {
		return ErrNotListening
	}

	errs := make(chan error, len(servers))
	var started sync.WaitGroup
	for _, srv := range servers {
		started.Add(1)
		var once sync.Once
		notify := func() {
			once.Do(started.Done)
		}
		srv.NotifyStartedFunc = notify

		go func(srv *dns.Server) {
			err := srv.ActivateAndServe()
			notify()
			errs <- err
		}(srv)
	}

	remaining := len(servers)
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errs:
		remaining--
	}

	started.Wait()
	s.log.Info("Shutting down DNS server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), util.DefaultTimeout)
	defer cancel()
	for _, srv := range servers {
		err := srv.ShutdownContext(shutdownCtx)
		if err != nil {
			s.log.Debug("Error shutting down listener", zap.String("net", srv.Net), zap.Error(err))
		}
	}

	for ; remaining > 0; remaining-- {
		err := <-errs
		if serveErr == nil {
			serveErr = err
		}
	}
	return serveErr
}
