package httptransport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func Test_withRoundTripper(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
	}{
		{
			name:       "successful_response",
			statusCode: http.StatusOK,
		},
		{
			name:       "not_found_response",
			statusCode: http.StatusNotFound,
		},
		{
			name:       "internal_error_response",
			statusCode: http.StatusInternalServerError,
		},
		{
			name:       "unhandled_status_response",
			statusCode: http.StatusPermanentRedirect,
		},
		{
			name: "client_error",
			err:  fmt.Errorf("something went wrong"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			histVec, counterVec := newTestMetrics(t)

			next := &mockRoundTripper{
				res: &http.Response{
					StatusCode: tt.statusCode,
				},
				err:     tt.err,
				timeout: time.Nanosecond,
			}

			mtr := NewMeteredRoundTripper(next, t.Name(), nil, histVec, counterVec, DefaultTTFBTimeout)
			r := httptest.NewRequest("GET", "/", nil)

			res, err := mtr.RoundTrip(r)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				counterCount := testutil.ToFloat64(counterVec.WithLabelValues("error"))
				require.Equal(t, float64(1), counterCount, "error")

				return
			}
			require.NoError(t, err)
			require.NotNil(t, res)

			statusCode := strconv.Itoa(res.StatusCode)
			counterCount := testutil.ToFloat64(counterVec.WithLabelValues(statusCode))
			require.Equal(t, float64(1), counterCount, statusCode)
		})
	}
}

func TestRoundTripTTFBTimeout(t *testing.T) {
	histVec, counterVec := newTestMetrics(t)

	next := &mockRoundTripper{
		res: &http.Response{
			StatusCode: http.StatusOK,
		},
		timeout: time.Second,
		err:     nil,
	}

	mtr := NewMeteredRoundTripper(next, t.Name(), nil, histVec, counterVec, time.Nanosecond)
	req, err := http.NewRequest("GET", "http://127.0.0.1:3000/about", nil)
	require.NoError(t, err)

	res, err := mtr.RoundTrip(req)
	require.Nil(t, res)
	require.ErrorIs(t, err, context.Canceled, "context must have been canceled after ttfb timeout")
}

func TestRoundTripTracesRealUpstream(t *testing.T) {
	histVec, counterVec := newTestMetrics(t)
	tracer := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "tracer",
	}, []string{"request_stage"})

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer upstream.Close()

	mtr := NewMeteredRoundTripper(NewTransport(), t.Name(), tracer, histVec, counterVec, time.Second)
	req, err := http.NewRequest("GET", upstream.URL, nil)
	require.NoError(t, err)

	res, err := mtr.RoundTrip(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusAccepted, res.StatusCode)
	require.Equal(t, float64(1), testutil.ToFloat64(counterVec.WithLabelValues("202")))
	require.Equal(t, 1, testutil.CollectAndCount(histVec))
	require.Greater(t, testutil.CollectAndCount(tracer), 0)
}

func newTestMetrics(t *testing.T) (*prometheus.HistogramVec, *prometheus.CounterVec) {
	t.Helper()

	histVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "durations",
	}, []string{"status_code"})

	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counter",
	}, []string{"status_code"})

	return histVec, counterVec
}

type mockRoundTripper struct {
	res     *http.Response
	err     error
	timeout time.Duration
}

func (mrt *mockRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	select {
	case <-r.Context().Done():
		return nil, r.Context().Err()
	case <-time.After(mrt.timeout):
		return mrt.res, mrt.err
	}
}

func TestTransportShouldHaveCustomConnectionPoolSettings(t *testing.T) {
	transport := NewTransport()

	require.Equal(t, 100, transport.MaxIdleConns)
	require.Equal(t, 100, transport.MaxIdleConnsPerHost)
	require.Equal(t, 0, transport.MaxConnsPerHost)
	require.Equal(t, 90*time.Second, transport.IdleConnTimeout)
	require.Equal(t, 10*time.Second, transport.TLSHandshakeTimeout)
	require.Equal(t, 15*time.Second, transport.ExpectContinueTimeout)
	require.NotNil(t, transport.TLSClientConfig.RootCAs)
}
