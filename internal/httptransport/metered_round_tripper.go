package httptransport

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// DefaultTTFBTimeout is the time to wait for the response headers of an upstream
const DefaultTTFBTimeout = 15 * time.Second

type meteredRoundTripper struct {
	next        http.RoundTripper
	name        string
	tracer      *prometheus.HistogramVec
	durations   *prometheus.HistogramVec
	counter     *prometheus.CounterVec
	ttfbTimeout time.Duration
}

// NewMeteredRoundTripper wraps next so that every round trip is traced, counted
// and timed with the given collectors. A round trip whose response headers do
// not arrive within ttfbTimeout is canceled, the response body is not affected.
func NewMeteredRoundTripper(next http.RoundTripper, name string, tracerVec, durationsVec *prometheus.
	HistogramVec, counterVec *prometheus.CounterVec, ttfbTimeout time.Duration) http.RoundTripper {
	if ttfbTimeout <= 0 {
		ttfbTimeout = DefaultTTFBTimeout
	}

	return &meteredRoundTripper{
		next:        next,
		name:        name,
		tracer:      tracerVec,
		durations:   durationsVec,
		counter:     counterVec,
		ttfbTimeout: ttfbTimeout,
	}
}

func (mrt *meteredRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx := r.Context()
	if mrt.tracer != nil {
		ctx = httptrace.WithClientTrace(ctx, mrt.newTracer(start))
	}
	ctx, cancel := context.WithCancel(ctx)

	timer := time.AfterFunc(mrt.ttfbTimeout, cancel)
	defer timer.Stop()

	r = r.WithContext(ctx)

	resp, err := mrt.next.RoundTrip(r)
	if err != nil {
		mrt.counter.WithLabelValues("error").Inc()
		return nil, err
	}

	mrt.logResponse(r, resp)

	statusCode := strconv.Itoa(resp.StatusCode)
	mrt.durations.WithLabelValues(statusCode).Observe(time.Since(start).Seconds())
	mrt.counter.WithLabelValues(statusCode).Inc()

	return resp, nil
}

func (mrt *meteredRoundTripper) logResponse(req *http.Request, resp *http.Response) {
	if log.GetLevel() != log.TraceLevel {
		return
	}

	l := log.WithFields(log.Fields{
		"client_name":     mrt.name,
		"req_url":         req.URL.String(),
		"res_status_code": resp.StatusCode,
	})

	for header, value := range resp.Header {
		l = l.WithField(strings.ToLower(header), strings.Join(value, ";"))
	}

	l.Traceln("response")
}
