package netutil

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var errKeepAliveNotSupported = errors.New("keep-alive not supported by the connection")

// LimiterMetrics are the gauges a Limiter reports its slots to
type LimiterMetrics struct {
	MaxConns     prometheus.Gauge
	ActiveConns  prometheus.Gauge
	WaitingConns prometheus.Gauge
}

// Limiter caps the number of connections open at once across every
// listener it limits. A connection holds its slot until it is closed.
type Limiter struct {
	slots   chan struct{}
	metrics LimiterMetrics
}

// NewLimiter returns a Limiter of maxConns slots
func NewLimiter(maxConns int, metrics LimiterMetrics) *Limiter {
	metrics.MaxConns.Set(float64(maxConns))

	return &Limiter{
		slots:   make(chan struct{}, maxConns),
		metrics: metrics,
	}
}

// wait blocks until a slot is free or closed is closed
func (l *Limiter) wait(closed <-chan struct{}) bool {
	l.metrics.WaitingConns.Inc()
	defer l.metrics.WaitingConns.Dec()

	select {
	case <-closed:
		return false
	case l.slots <- struct{}{}:
		l.metrics.ActiveConns.Inc()
		return true
	}
}

func (l *Limiter) release() {
	<-l.slots
	l.metrics.ActiveConns.Dec()
}

// Limit returns a listener that only accepts a connection once the Limiter
// has a free slot for it.
func (l *Limiter) Limit(listener net.Listener) net.Listener {
	return &limitedListener{
		Listener: listener,
		limiter:  l,
		closed:   make(chan struct{}),
	}
}

type limitedListener struct {
	net.Listener
	limiter   *Limiter
	closed    chan struct{}
	closeOnce sync.Once
}

func (ln *limitedListener) Accept() (net.Conn, error) {
	if !ln.limiter.wait(ln.closed) {
		return nil, net.ErrClosed
	}

	conn, err := ln.Listener.Accept()
	if err != nil {
		ln.limiter.release()
		return nil, err
	}

	return &limitedConn{Conn: conn, release: ln.limiter.release}, nil
}

func (ln *limitedListener) Close() error {
	err := ln.Listener.Close()
	ln.closeOnce.Do(func() { close(ln.closed) })

	return err
}

type limitedConn struct {
	net.Conn
	releaseOnce sync.Once
	release     func()
}

func (c *limitedConn) Close() error {
	err := c.Conn.Close()
	c.releaseOnce.Do(c.release)

	return err
}

// SetKeepAlive lets KeepAliveListener reach the wrapped TCP connection
func (c *limitedConn) SetKeepAlive(enabled bool) error {
	kc, ok := c.Conn.(keepAliveSetter)
	if !ok {
		return errKeepAliveNotSupported
	}

	return kc.SetKeepAlive(enabled)
}

func (c *limitedConn) SetKeepAlivePeriod(period time.Duration) error {
	kc, ok := c.Conn.(keepAliveSetter)
	if !ok {
		return errKeepAliveNotSupported
	}

	return kc.SetKeepAlivePeriod(period)
}
