package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"gitlab.com/tachyons/pages-ssr/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "hello")
})

func TestChainOrder(t *testing.T) {
	var order []string

	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(okHandler, mark("first"), mark("second"), mark("third"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRejectMethods(t *testing.T) {
	middleware := RejectMethods(okHandler)

	acceptedMethods := []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "CONNECT", "OPTIONS", "TRACE"}
	for _, method := range acceptedMethods {
		t.Run(method, func(t *testing.T) {
			require.HTTPStatusCode(t, middleware.ServeHTTP, method, "/", nil, http.StatusOK)
		})
	}

	t.Run("UNKNOWN", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.RejectedRequestsCount)

		require.HTTPStatusCode(t, middleware.ServeHTTP, "UNKNOWN", "/", nil, http.StatusMethodNotAllowed)
		require.Equal(t, before+1, testutil.ToFloat64(metrics.RejectedRequestsCount))
	})
}

func TestURILimiter(t *testing.T) {
	tests := map[string]struct {
		limit          int
		url            string
		expectedStatus int
	}{
		"with_disabled_middleware": {
			limit:          0,
			url:            "/pkg/app-ab12cd34.js",
			expectedStatus: http.StatusOK,
		},
		"with_limit_set_to_request_length": {
			limit:          17,
			url:            "/index.html?q=a#b",
			expectedStatus: http.StatusOK,
		},
		"with_uri_length_exceeding_the_limit": {
			limit:          17,
			url:            "/index1.html?q=a#b",
			expectedStatus: http.StatusRequestURITooLong,
		},
		"with_uri_length_exceeding_the_limit_with_query": {
			limit:          17,
			url:            "/index.html?q=aa#b",
			expectedStatus: http.StatusRequestURITooLong,
		},
	}
	for tn, tt := range tests {
		t.Run(tn, func(t *testing.T) {
			handler := URILimiter(tt.limit)(okHandler)

			ww := httptest.NewRecorder()
			rr := httptest.NewRequest(http.MethodGet, tt.url, nil)

			handler.ServeHTTP(ww, rr)

			res := ww.Result()
			defer res.Body.Close()

			require.Equal(t, tt.expectedStatus, res.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				b, err := io.ReadAll(res.Body)
				require.NoError(t, err)

				require.Equal(t, "hello", string(b))
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusPath string
		path       string
		body       string
	}{
		{
			name:       "Not a healthcheck request",
			statusPath: "/-/healthcheck",
			path:       "/foo/bar",
			body:       "hello",
		},
		{
			name:       "Healthcheck request",
			statusPath: "/-/healthcheck",
			path:       "/-/healthcheck",
			body:       "success\n",
		},
		{
			name:       "Disabled healthcheck",
			statusPath: "",
			path:       "/",
			body:       "hello",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rr := httptest.NewRecorder()

			HealthCheck(tc.statusPath)(okHandler).ServeHTTP(rr, r)

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, tc.body, rr.Body.String())
		})
	}
}

func TestCustomHeaders(t *testing.T) {
	headers, err := ParseHeaderString([]string{
		"content-security-policy: default-src 'self'",
		"X-Test-String: Test",
		"X-Test-String: Again",
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	CustomHeaders(headers)(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	// use the map directly to make sure ParseHeaderString is adding the canonical keys
	require.Equal(t, []string{"default-src 'self'"}, rr.Result().Header["Content-Security-Policy"])
	require.Equal(t, []string{"Test", "Again"}, rr.Result().Header["X-Test-String"])
	require.Equal(t, "hello", rr.Body.String())
}

func TestParseHeaderString(t *testing.T) {
	tests := []struct {
		name          string
		headerStrings []string
		valid         bool
	}{
		{
			name:          "Normal case",
			headerStrings: []string{"X-Test-String: Test"},
			valid:         true,
		},
		{
			name:          "Whitespace trim case",
			headerStrings: []string{"   X-Test-String: Test   "},
			valid:         true,
		},
		{
			name:          "Whitespace in value case",
			headerStrings: []string{"X-Test-String: This is a test"},
			valid:         true,
		},
		{
			name:          "Invalid case",
			headerStrings: []string{"X-Test-String Test"},
			valid:         false,
		},
		{
			name:          "One invalid case",
			headerStrings: []string{"X-Test-String: Test", "X-Test-String Test"},
			valid:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeaderString(tt.headerStrings)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, errInvalidHeaderParameter)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	tests := map[string]struct {
		disabled       bool
		expectedHeader string
	}{
		"enabled":  {disabled: false, expectedHeader: "*"},
		"disabled": {disabled: true, expectedHeader: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/index.html", nil)
			r.Header.Set("Origin", "https://other.example.com")
			rr := httptest.NewRecorder()

			CORS(tt.disabled)(okHandler).ServeHTTP(rr, r)

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, tt.expectedHeader, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
