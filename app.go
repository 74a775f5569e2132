package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	ghandlers "github.com/gorilla/handlers"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"golang.org/x/sync/errgroup"

	cfg "gitlab.com/tachyons/pages-ssr/internal/config"
	"gitlab.com/tachyons/pages-ssr/internal/logging"
	"gitlab.com/tachyons/pages-ssr/internal/middleware"
	"gitlab.com/tachyons/pages-ssr/internal/netutil"
	"gitlab.com/tachyons/pages-ssr/internal/render"
	"gitlab.com/tachyons/pages-ssr/internal/render/proxy"
	"gitlab.com/tachyons/pages-ssr/internal/render/shell"
	"gitlab.com/tachyons/pages-ssr/internal/routing"
	"gitlab.com/tachyons/pages-ssr/internal/serving"
	"gitlab.com/tachyons/pages-ssr/internal/serving/disk"
	"gitlab.com/tachyons/pages-ssr/internal/vfs"
	"gitlab.com/tachyons/pages-ssr/internal/vfs/local"
	"gitlab.com/tachyons/pages-ssr/metrics"
)

type theApp struct {
	config   *cfg.Config
	reader   *disk.Reader
	renderer render.Renderer
}

func newApp(config *cfg.Config) (*theApp, error) {
	root, err := local.New(config.Site.Root)
	if err != nil {
		return nil, fmt.Errorf("opening site root: %w", err)
	}

	renderer, err := newRenderer(config)
	if err != nil {
		return nil, err
	}

	return &theApp{
		config:   config,
		reader:   disk.NewReader(vfs.Instrumented(root, "local", root.Path()), config.Site.StaticMaxAge),
		renderer: renderer,
	}, nil
}

// newRenderer returns nil for the none mode, every route then ends with the
// static lookup.
func newRenderer(config *cfg.Config) (render.Renderer, error) {
	opts := render.Options{
		SiteRoot:   config.Site.Root,
		SitePkgDir: config.Site.PkgDir,
		OutputName: config.Site.OutputName,
		SiteAddr:   config.Site.Addr,
		Env:        config.Site.Env,
	}

	switch config.Renderer.Mode {
	case cfg.RendererShell:
		s, err := shell.New(opts, config.Renderer.Template)
		if err != nil {
			return nil, err
		}
		return s, nil
	case cfg.RendererProxy:
		p, err := proxy.New(opts, config.Renderer.URL, config.Renderer.Timeout)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, nil
	}
}

func (a *theApp) router() http.Handler {
	return routing.NewRouter(a.config.Site.PkgDir, routing.Handlers{
		Assets:   serving.NewAssets(a.reader, a.renderer),
		Fallback: serving.NewFallback(a.reader, a.renderer),
		CatchAll: serving.NewRenderOnly(a.renderer),
	})
}

// buildHandlerPipeline wraps the router with the request filters, the
// outermost first: method rejection, correlation, access log, URI limit,
// status page, custom headers and CORS.
func (a *theApp) buildHandlerPipeline() (http.Handler, error) {
	customHeaders, err := middleware.ParseHeaderString(a.config.General.CustomHeaders)
	if err != nil {
		return nil, fmt.Errorf("parsing custom headers: %w", err)
	}

	handler := middleware.Chain(a.router(),
		middleware.URILimiter(a.config.General.MaxURILength),
		middleware.HealthCheck(a.config.General.StatusPath),
		middleware.CustomHeaders(customHeaders),
		middleware.CORS(a.config.General.DisableCrossOriginRequests),
	)

	handler, err = logging.BasicAccessLogger(handler, a.config.Log.Format, nil)
	if err != nil {
		return nil, err
	}

	var correlationOpts []correlation.InboundHandlerOption
	if a.config.General.PropagateCorrelationID {
		correlationOpts = append(correlationOpts, correlation.WithPropagation())
	}
	handler = correlation.InjectCorrelationID(handler, correlationOpts...)

	return middleware.RejectMethods(handler), nil
}

// Run serves on every configured listener until ctx is done or one of them
// fails, then shuts all of them down.
func (a *theApp) Run(ctx context.Context) error {
	handler, err := a.buildHandlerPipeline()
	if err != nil {
		return err
	}

	var limiter *netutil.Limiter
	if a.config.General.MaxConns > 0 {
		limiter = netutil.NewLimiter(a.config.General.MaxConns, netutil.LimiterMetrics{
			MaxConns:     metrics.LimitListenerMaxConns,
			ActiveConns:  metrics.LimitListenerConcurrentConns,
			WaitingConns: metrics.LimitListenerWaitingConns,
		})
	}

	var listeners []listenerConfig

	for _, addr := range a.config.ListenHTTPStrings.Items() {
		listeners = append(listeners, listenerConfig{addr: addr, handler: handler, limiter: limiter})
	}

	for _, addr := range a.config.ListenProxyStrings.Items() {
		listeners = append(listeners, listenerConfig{addr: addr, handler: ghandlers.ProxyHeaders(handler), limiter: limiter})
	}

	for _, addr := range a.config.ListenProxyv2Strings.Items() {
		listeners = append(listeners, listenerConfig{addr: addr, handler: handler, limiter: limiter, isProxyV2: true})
	}

	if a.config.General.MetricsAddress != "" {
		listeners = append(listeners, listenerConfig{addr: a.config.General.MetricsAddress, handler: promhttp.Handler()})
	}

	var servers []*server
	for _, lc := range listeners {
		s, err := a.newServer(lc)
		if err != nil {
			closeAll(servers)
			return err
		}

		servers = append(servers, s)
	}

	eg, ctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		s := s
		eg.Go(func() error {
			log.WithField("listener", s.addr).Info("Listening for requests")

			if err := s.serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving on %s: %w", s.addr, err)
			}

			return nil
		})
	}

	eg.Go(func() error {
		<-ctx.Done()

		return a.shutdown(servers)
	})

	return eg.Wait()
}

func (a *theApp) shutdown(servers []*server) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	log.WithField("timeout", a.config.Server.ShutdownTimeout).Info("Shutting down")

	var result *multierror.Error
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("shutting down %s: %w", s.addr, err))
		}
	}

	return result.ErrorOrNil()
}

func closeAll(servers []*server) {
	for _, s := range servers {
		s.listener.Close()
	}
}
