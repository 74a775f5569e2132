package main

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	proxyproto "github.com/pires/go-proxyproto"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"gitlab.com/tachyons/pages-ssr/internal/netutil"
)

type listenerConfig struct {
	addr      string
	isProxyV2 bool
	limiter   *netutil.Limiter
	handler   http.Handler
}

type server struct {
	*http.Server
	addr     string
	listener net.Listener
}

func (s *server) serve() error {
	return s.Serve(s.listener)
}

// listen binds addr, paths containing a slash are unix sockets
func listen(addr string) (net.Listener, error) {
	network := "tcp"
	if strings.Contains(addr, "/") {
		network = "unix"
	}

	l, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return l, nil
}

func (a *theApp) newServer(config listenerConfig) (*server, error) {
	handler := config.handler
	if a.config.General.HTTP2 {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	httpServer := &http.Server{
		Handler:           handler,
		ReadTimeout:       a.config.Server.ReadTimeout,
		ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
		WriteTimeout:      a.config.Server.WriteTimeout,
	}

	l, err := listen(config.addr)
	if err != nil {
		return nil, err
	}

	if config.limiter != nil {
		l = config.limiter.Limit(l)
	}

	l = netutil.KeepAliveListener(l, a.config.Server.KeepAlive)

	if config.isProxyV2 {
		l = &proxyproto.Listener{
			Listener: l,
			Policy: func(upstream net.Addr) (proxyproto.Policy, error) {
				return proxyproto.REQUIRE, nil
			},
		}
	}

	return &server{Server: httpServer, addr: config.addr, listener: l}, nil
}
