package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/go-mimedb"

	cfg "gitlab.com/tachyons/pages-ssr/internal/config"
	"gitlab.com/tachyons/pages-ssr/internal/errortracking"
	"gitlab.com/tachyons/pages-ssr/internal/logging"
	"gitlab.com/tachyons/pages-ssr/metrics"
)

// VERSION stores the information about the semantic version of application
var VERSION = "dev"

// REVISION stores the information about the git revision of application
var REVISION = "HEAD"

func initErrorReporting(config *cfg.Config) {
	if config.Sentry.DSN == "" {
		return
	}

	err := errortracking.Initialize(config.Sentry.DSN, config.Sentry.Environment, fmt.Sprintf("%s-%s", VERSION, REVISION))
	if err != nil {
		log.WithError(err).Warn("Failed to initialize error reporting")
	}
}

func appMain() {
	config, err := cfg.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	printVersion(config.General.ShowVersion, VERSION)

	if err := logging.ConfigureLogging(config.Log.Format, config.Log.Verbose); err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}

	log.WithFields(log.Fields{
		"version":  VERSION,
		"revision": REVISION,
	}).Print("Pages SSR server")

	cfg.LogConfig(config)
	initErrorReporting(config)

	if err := mimedb.LoadTypes(); err != nil {
		log.WithError(err).Warn("Loading extended MIME database failed")
	}
	addExtraMIMETypes()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(config)
	if err != nil {
		capturingFatal(err)
	}

	if err := app.Run(ctx); err != nil {
		capturingFatal(err)
	}

	log.Info("Server stopped")
}

func printVersion(showVersion bool, version string) {
	if showVersion {
		fmt.Fprintf(os.Stdout, "%s\n", version)
		os.Exit(0)
	}
}

func capturingFatal(err error) {
	errortracking.CaptureErrWithStackTrace(err)
	log.WithError(err).Fatal("Server failed")
}

func main() {
	log.SetOutput(os.Stderr)

	metrics.MustRegister()

	appMain()
}
