package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrNoListener                = errors.New("no listener defined, please specify at least one --listen-* flag")
	ErrSiteRootNotDirectory      = errors.New("site-root must be an existing directory")
	ErrInvalidPkgDir             = errors.New("site-pkg-dir must be a single non-empty path segment")
	ErrNoOutputName              = errors.New("output-name must not be empty")
	ErrInvalidRenderer           = errors.New("renderer must be one of 'shell', 'proxy' or 'none'")
	ErrRendererNoURL             = errors.New("renderer-url must be defined for the 'proxy' renderer")
	ErrRendererUnsupportedScheme = errors.New("renderer-url scheme must be either http:// or https://")
	ErrRendererInvalidTimeout    = errors.New("renderer-timeout must be greater than 0")
	ErrInvalidStaticMaxAge       = errors.New("static-max-age must not be negative")
)

// Validate checks the whole configuration and reports every problem at once
func Validate(config *Config) error {
	var result *multierror.Error

	result = multierror.Append(result,
		validateListeners(config),
		validateSite(config),
		validateRenderer(config),
	)

	return result.ErrorOrNil()
}

func validateListeners(config *Config) error {
	if config.ListenHTTPStrings.Len() == 0 &&
		config.ListenProxyStrings.Len() == 0 &&
		config.ListenProxyv2Strings.Len() == 0 {
		return ErrNoListener
	}

	return nil
}

func validateSite(config *Config) error {
	var result *multierror.Error

	fi, err := os.Stat(config.Site.Root)
	if err != nil || !fi.IsDir() {
		result = multierror.Append(result, fmt.Errorf("%w: %q", ErrSiteRootNotDirectory, config.Site.Root))
	}

	pkgDir := config.Site.PkgDir
	if pkgDir == "" || pkgDir == "." || pkgDir == ".." || strings.ContainsAny(pkgDir, `/\`) {
		result = multierror.Append(result, ErrInvalidPkgDir)
	}

	if config.Site.OutputName == "" {
		result = multierror.Append(result, ErrNoOutputName)
	}

	if config.Site.StaticMaxAge < 0 {
		result = multierror.Append(result, ErrInvalidStaticMaxAge)
	}

	return result.ErrorOrNil()
}

func validateRenderer(config *Config) error {
	var result *multierror.Error

	switch config.Renderer.Mode {
	case RendererShell, RendererNone:
	case RendererProxy:
		if err := validateRendererURL(config.Renderer.URL); err != nil {
			result = multierror.Append(result, err)
		}
	default:
		result = multierror.Append(result, fmt.Errorf("%w: got %q", ErrInvalidRenderer, config.Renderer.Mode))
	}

	if config.Renderer.Timeout <= 0 {
		result = multierror.Append(result, ErrRendererInvalidTimeout)
	}

	return result.ErrorOrNil()
}

func validateRendererURL(rawURL string) error {
	if rawURL == "" {
		return ErrRendererNoURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	// url.Parse ensures that the Scheme attribute is always lower case.
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrRendererUnsupportedScheme
	}

	return nil
}
