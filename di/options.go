package di

import (
	"log/slog"

	"github.com/sghaida/lazyproxy/proxy"
)

// Option configures a Provider.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	observer        proxy.Observer
	validateScopes  bool
	validateOnBuild bool
}

func defaultOptions() options {
	return options{logger: slog.Default(), validateScopes: true}
}

// WithLogger sets the provider logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver attaches an observer to every lazy proxy the provider creates.
func WithObserver(obs proxy.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithScopeValidation rejects scoped services resolved from the root scope,
// including through singletons. Enabled by default.
func WithScopeValidation(on bool) Option {
	return func(o *options) { o.validateScopes = on }
}

// WithBuildValidation makes Build check that every constructor dependency is
// registered and that no singleton depends on a scoped service.
func WithBuildValidation(on bool) Option {
	return func(o *options) { o.validateOnBuild = on }
}
