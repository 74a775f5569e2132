package config

import (
	"time"

	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"

	"gitlab.com/tachyons/pages-ssr/internal/logging"
)

// Renderer modes accepted by -renderer
const (
	RendererShell = "shell"
	RendererProxy = "proxy"
	RendererNone  = "none"
)

// Config stores all the config options of the server.
type Config struct {
	General  General
	Site     Site
	Renderer Renderer
	Server   Server
	Log      Log
	Sentry   Sentry

	// These fields contain the raw strings passed for listen-http,
	// listen-proxy and listen-proxyv2 settings. They are used by the app
	// to create listeners.
	ListenHTTPStrings    ListFlag
	ListenProxyStrings   ListFlag
	ListenProxyv2Strings ListFlag
}

// General groups settings that are general to the server and can not
// be categorized under other head.
type General struct {
	HTTP2          bool
	MaxConns       int
	MaxURILength   int
	MetricsAddress string
	StatusPath     string

	DisableCrossOriginRequests bool
	PropagateCorrelationID     bool

	ShowVersion bool

	CustomHeaders []string
}

// Site groups the immutable options of the served site. They are shared
// read-only by every request.
type Site struct {
	Root         string
	PkgDir       string
	OutputName   string
	Addr         string
	Env          string
	StaticMaxAge time.Duration
}

// Renderer groups settings of the dynamic renderer requests fall back to
type Renderer struct {
	Mode     string
	URL      string
	Timeout  time.Duration
	Template string
}

// Server groups the HTTP server timeouts
type Server struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	KeepAlive         time.Duration
	ShutdownTimeout   time.Duration
}

// Log groups settings related to configuring logging
type Log struct {
	Format  string
	Verbose bool
}

// Sentry groups settings related to configuring Sentry
type Sentry struct {
	DSN         string
	Environment string
}

func loadConfig() *Config {
	return &Config{
		General: General{
			HTTP2:                      *useHTTP2,
			MaxConns:                   *maxConns,
			MaxURILength:               *maxURILength,
			MetricsAddress:             *metricsAddress,
			StatusPath:                 *statusPath,
			DisableCrossOriginRequests: *disableCrossOriginRequests,
			PropagateCorrelationID:     *propagateCorrelationID,
			ShowVersion:                *showVersion,
			CustomHeaders:              header.Items(),
		},
		Site: Site{
			Root:         *siteRoot,
			PkgDir:       *sitePkgDir,
			OutputName:   *outputName,
			Addr:         *siteAddr,
			Env:          *env,
			StaticMaxAge: *staticMaxAge,
		},
		Renderer: Renderer{
			Mode:     *rendererMode,
			URL:      *rendererURL,
			Timeout:  *rendererTimeout,
			Template: *rendererTemplate,
		},
		Server: Server{
			ReadTimeout:       *serverReadTimeout,
			ReadHeaderTimeout: *serverReadHeaderTimeout,
			WriteTimeout:      *serverWriteTimeout,
			KeepAlive:         *serverKeepAlive,
			ShutdownTimeout:   *serverShutdownTimeout,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},
		Sentry: Sentry{
			DSN:         *sentryDSN,
			Environment: *sentryEnvironment,
		},

		ListenHTTPStrings:    listenHTTP,
		ListenProxyStrings:   listenProxy,
		ListenProxyv2Strings: listenProxyv2,
	}
}

// LogConfig logs the effective configuration at debug level
func LogConfig(config *Config) {
	log.WithFields(log.Fields{
		"default-config-filename":       flag.DefaultConfigFlagname,
		"disable-cross-origin-requests": config.General.DisableCrossOriginRequests,
		"env":                           config.Site.Env,
		"listen-http":                   config.ListenHTTPStrings.Items(),
		"listen-proxy":                  config.ListenProxyStrings.Items(),
		"listen-proxyv2":                config.ListenProxyv2Strings.Items(),
		"log-format":                    config.Log.Format,
		"max-conns":                     config.General.MaxConns,
		"max-uri-length":                config.General.MaxURILength,
		"metrics-address":               config.General.MetricsAddress,
		"output-name":                   config.Site.OutputName,
		"propagate-correlation-id":      config.General.PropagateCorrelationID,
		"renderer":                      config.Renderer.Mode,
		"renderer-template":             config.Renderer.Template,
		"renderer-timeout":              config.Renderer.Timeout,
		"renderer-url":                  logging.CleanURL(config.Renderer.URL),
		"server-shutdown-timeout":       config.Server.ShutdownTimeout,
		"site-addr":                     config.Site.Addr,
		"site-pkg-dir":                  config.Site.PkgDir,
		"site-root":                     config.Site.Root,
		"static-max-age":                config.Site.StaticMaxAge,
		"status-path":                   config.General.StatusPath,
		"use-http2":                     config.General.HTTP2,
	}).Debug("Start server with configuration")
}

// LoadConfig parses configuration settings passed as command line arguments or
// via config file, and populates a Config object with those values
func LoadConfig() (*Config, error) {
	initFlags()

	config := loadConfig()
	if config.General.ShowVersion {
		return config, nil
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}
