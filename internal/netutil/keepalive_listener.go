package netutil

import (
	"net"
	"time"
)

type keepAliveSetter interface {
	SetKeepAlive(bool) error
	SetKeepAlivePeriod(time.Duration) error
}

type keepAliveListener struct {
	net.Listener
	period time.Duration
}

// KeepAliveListener enables TCP keep-alives with the given period on every
// accepted connection supporting them. A zero period leaves the OS default,
// a negative one disables keep-alives.
func KeepAliveListener(listener net.Listener, period time.Duration) net.Listener {
	return &keepAliveListener{Listener: listener, period: period}
}

func (ln *keepAliveListener) Accept() (net.Conn, error) {
	conn, err := ln.Listener.Accept()
	if err != nil {
		return nil, err
	}

	kc, ok := conn.(keepAliveSetter)
	if !ok {
		return conn, nil
	}

	if ln.period < 0 {
		kc.SetKeepAlive(false)
		return conn, nil
	}

	kc.SetKeepAlive(true)
	if ln.period > 0 {
		kc.SetKeepAlivePeriod(ln.period)
	}

	return conn, nil
}
