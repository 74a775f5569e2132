package config

import (
	"time"

	"github.com/namsral/flag"
)

var (
	siteRoot     = flag.String("site-root", "site", "The directory static files are served from")
	sitePkgDir   = flag.String("site-pkg-dir", "pkg", "The directory below site-root holding the compiled bundle, requests on /<site-pkg-dir>/ are served as flat asset lookups")
	outputName   = flag.String("output-name", "app", "The base name of the compiled bundle files, e.g. app.js, app.wasm and app.css")
	siteAddr     = flag.String("site-addr", "", "The public address of the site, handed to the renderer")
	env          = flag.String("env", "PROD", "The environment name of the site, handed to the renderer")
	staticMaxAge = flag.Duration("static-max-age", 10*time.Minute, "Cache-Control max-age for static files, 0 disables cache headers")

	rendererMode     = flag.String("renderer", RendererShell, "The dynamic renderer requests fall back to: 'shell', 'proxy' or 'none'")
	rendererURL      = flag.String("renderer-url", "", "Upstream rendering server for the 'proxy' renderer, e.g. http://127.0.0.1:3000")
	rendererTimeout  = flag.Duration("renderer-timeout", 30*time.Second, "Time to wait for the first response byte of the upstream renderer")
	rendererTemplate = flag.String("renderer-template", "", "Path to an html/template file replacing the built-in application shell")

	metricsAddress         = flag.String("metrics-address", "", "The address to listen on for metrics requests")
	statusPath             = flag.String("status-path", "", "The url path for a status page, e.g., /@status")
	sentryDSN              = flag.String("sentry-dsn", "", "The address for sending sentry crash reporting to")
	sentryEnvironment      = flag.String("sentry-environment", "", "The environment for sentry crash reporting")
	propagateCorrelationID = flag.Bool("propagate-correlation-id", true, "Reuse existing Correlation-ID from the incoming request header `X-Request-ID` if present")
	logFormat              = flag.String("log-format", "json", "The log output format: 'text' or 'json'")
	logVerbose             = flag.Bool("log-verbose", false, "Verbose logging")
	useHTTP2               = flag.Bool("use-http2", true, "Enable cleartext HTTP/2 (h2c) support")

	maxConns     = flag.Int("max-conns", 0, "Limit on the number of concurrent connections to the HTTP or proxy listeners, 0 for no limit")
	maxURILength = flag.Int("max-uri-length", 1024, "Limit the length of URI, 0 for unlimited.")

	// HTTP server timeouts
	serverReadTimeout       = flag.Duration("server-read-timeout", 5*time.Second, "ReadTimeout is the maximum duration for reading the entire request, including the body. A zero or negative value means there will be no timeout.")
	serverReadHeaderTimeout = flag.Duration("server-read-header-timeout", time.Second, "ReadHeaderTimeout is the amount of time allowed to read request headers. A zero or negative value means there will be no timeout.")
	serverWriteTimeout      = flag.Duration("server-write-timeout", 0, "WriteTimeout is the maximum duration before timing out writes of the response. A zero or negative value means there will be no timeout.")
	serverKeepAlive         = flag.Duration("server-keep-alive", 15*time.Second, "KeepAlive specifies the keep-alive period for network connections accepted by this listener. If zero, keep-alives are enabled if supported by the protocol and operating system. If negative, keep-alives are disabled.")
	serverShutdownTimeout   = flag.Duration("server-shutdown-timeout", 30*time.Second, "Server shutdown timeout (default: 30s)")

	disableCrossOriginRequests = flag.Bool("disable-cross-origin-requests", false, "Disable cross-origin requests")

	showVersion = flag.Bool("version", false, "Show version")

	// See initFlags()
	listenHTTP    = NewAddressList()
	listenProxy   = NewAddressList()
	listenProxyv2 = NewAddressList()

	header = NewHeaderList()
)

// initFlags will be called from LoadConfig
func initFlags() {
	flag.Var(&listenHTTP, "listen-http", "The address(es) or unix socket paths to listen on for HTTP requests")
	flag.Var(&listenProxy, "listen-proxy", "The address(es) or unix socket paths to listen on for proxy requests, X-Forwarded-* headers are trusted")
	flag.Var(&listenProxyv2, "listen-proxyv2", "The address(es) or unix socket paths to listen on for PROXYv2 requests (https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt)")
	flag.Var(&header, "header", "The additional http header(s) that should be send to the client, separated by ';;'")

	// read from -config=/path/to/pages-ssr-config
	flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	flag.Parse()
}
