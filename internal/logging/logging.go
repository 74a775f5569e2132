package logging

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"gitlab.com/gitlab-org/labkit/log"
)

type ctxKey struct{}

// annotations are request scoped fields filled by the handlers and picked
// up by the access logger once the request is done.
type annotations struct {
	mu     sync.Mutex
	fields log.Fields
}

// ConfigureLogging will initialize the system logger.
func ConfigureLogging(format string, verbose bool) error {
	var levelOption log.LoggerOption

	if format == "" {
		format = "json"
	}

	if verbose {
		levelOption = log.WithLogLevel("trace")
	} else {
		levelOption = log.WithLogLevel("info")
	}

	_, err := log.Initialize(
		log.WithFormatter(format),
		levelOption,
	)
	return err
}

// getAccessLogger will return the default logger, except when
// the log format is text, in which case a combined HTTP access
// logger will be configured.
func getAccessLogger(format string) (*logrus.Logger, error) {
	if format != "text" && format != "" {
		return logrus.StandardLogger(), nil
	}

	accessLogger := log.New()
	_, err := log.Initialize(
		log.WithLogger(accessLogger),  // Configure `accessLogger`
		log.WithFormatter("combined"), // Use the combined formatter
	)
	if err != nil {
		return nil, err
	}

	return accessLogger, nil
}

// BasicAccessLogger configures the HTTP access logger middleware. Fields
// recorded with Annotate while serving the request are added to the entry.
func BasicAccessLogger(handler http.Handler, format string, extraFields log.ExtraFieldsGeneratorFunc) (http.Handler, error) {
	accessLogger, err := getAccessLogger(format)
	if err != nil {
		return nil, err
	}

	logged := log.AccessLogger(handler,
		log.WithExtraFields(enrichExtraFields(extraFields)),
		log.WithAccessLogger(accessLogger),
		log.WithXFFAllowed(func(sip string) bool { return false }),
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxKey{}, &annotations{fields: log.Fields{}})
		logged.ServeHTTP(w, r.WithContext(ctx))
	}), nil
}

func enrichExtraFields(extraFields log.ExtraFieldsGeneratorFunc) log.ExtraFieldsGeneratorFunc {
	return func(r *http.Request) log.Fields {
		enrichedFields := log.Fields{
			"correlation_id": correlation.ExtractFromContext(r.Context()),
			"ssr_https":      r.TLS != nil,
			"ssr_host":       r.Host,
		}

		for field, value := range annotationsFrom(r.Context()) {
			enrichedFields[field] = value
		}

		if extraFields != nil {
			for field, value := range extraFields(r) {
				enrichedFields[field] = value
			}
		}

		return enrichedFields
	}
}

// Annotate records a field for the access log entry of the request owning ctx.
// It is a no-op outside of BasicAccessLogger.
func Annotate(ctx context.Context, key string, value interface{}) {
	a, ok := ctx.Value(ctxKey{}).(*annotations)
	if !ok {
		return
	}

	a.mu.Lock()
	a.fields[key] = value
	a.mu.Unlock()
}

func annotationsFrom(ctx context.Context) log.Fields {
	a, ok := ctx.Value(ctxKey{}).(*annotations)
	if !ok {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	fields := make(log.Fields, len(a.fields))
	for k, v := range a.fields {
		fields[k] = v
	}

	return fields
}

// LogRequest will inject request host and path to the logged messages
func LogRequest(r *http.Request) *logrus.Entry {
	return log.WithFields(log.Fields{
		"correlation_id": correlation.ExtractFromContext(r.Context()),
		"host":           r.Host,
		"path":           r.URL.Path,
	})
}

// CleanURL removes credentials, query and fragment from a URL before it is logged
func CleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}
