package errortracking

import (
	"net/http"

	"gitlab.com/gitlab-org/labkit/errortracking"
)

// Initialize configures the Sentry reporter. An empty dsn leaves reporting disabled.
func Initialize(dsn, environment, version string) error {
	return errortracking.Initialize(
		errortracking.WithSentryDSN(dsn),
		errortracking.WithVersion(version),
		errortracking.WithLoggerName("pages-ssr"),
		errortracking.WithSentryEnvironment(environment),
	)
}

// CaptureOption alias to avoid importing labkit/errortracking in internal packages
type CaptureOption = errortracking.CaptureOption

// WithField alias to avoid importing labkit/errortracking in internal packages
func WithField(key, value string) CaptureOption {
	return errortracking.WithField(key, value)
}

// CaptureErrWithReqAndStackTrace reports err along with the request and the stack trace
func CaptureErrWithReqAndStackTrace(err error, r *http.Request, fields ...CaptureOption) {
	opts := append(
		fields,
		errortracking.WithContext(r.Context()),
		errortracking.WithRequest(r),
		errortracking.WithStackTrace(),
	)

	errortracking.Capture(err, opts...)
}

// CaptureErrWithStackTrace reports err along with the stack trace
func CaptureErrWithStackTrace(err error, fields ...CaptureOption) {
	errortracking.Capture(err, append(fields, errortracking.WithStackTrace())...)
}
