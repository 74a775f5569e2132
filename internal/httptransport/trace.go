package httptransport

import (
	"net/http/httptrace"
	"time"

	"gitlab.com/gitlab-org/labkit/log"
)

func (mrt *meteredRoundTripper) newTracer(start time.Time) *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn: func(host string) {
			mrt.httpTraceObserve("httptrace.ClientTrace.GetConn", start)

			log.WithFields(log.Fields{
				"client_name": mrt.name,
				"host":        host,
			}).Traceln("httptrace.ClientTrace.GetConn")
		},
		GotConn: func(connInfo httptrace.GotConnInfo) {
			mrt.httpTraceObserve("httptrace.ClientTrace.GotConn", start)

			log.WithFields(log.Fields{
				"client_name":  mrt.name,
				"reused":       connInfo.Reused,
				"was_idle":     connInfo.WasIdle,
				"idle_time_ms": connInfo.IdleTime.Milliseconds(),
			}).Traceln("httptrace.ClientTrace.GotConn")
		},
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			mrt.httpTraceObserve("httptrace.ClientTrace.WroteRequest", start)

			log.WithFields(log.Fields{
				"client_name": mrt.name,
			}).WithError(info.Err).Traceln("httptrace.ClientTrace.WroteRequest")
		},
		GotFirstResponseByte: func() {
			mrt.httpTraceObserve("httptrace.ClientTrace.GotFirstResponseByte", start)
		},
		ConnectStart: func(network, addr string) {
			mrt.httpTraceObserve("httptrace.ClientTrace.ConnectStart", start)
		},
		ConnectDone: func(network string, addr string, err error) {
			mrt.httpTraceObserve("httptrace.ClientTrace.ConnectDone", start)

			l := log.WithFields(log.Fields{
				"client_name": mrt.name,
				"network":     network,
				"address":     addr,
			})

			if err != nil {
				l.WithError(err).Error("httptrace.ClientTrace.ConnectDone")
				return
			}

			l.Traceln("httptrace.ClientTrace.ConnectDone")
		},
	}
}

func (mrt *meteredRoundTripper) httpTraceObserve(label string, start time.Time) {
	mrt.tracer.WithLabelValues(label).
		Observe(time.Since(start).Seconds())
}
