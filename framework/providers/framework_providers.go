package providers

import (
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
//   - "manifest"       → *config.Manifest (YAML aliases and tags)
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(container.Resolver) (any, error) {
		return config.Load(envFiles...), nil
	})
	_ = app.Alias("configuration", "config")

	app.Singleton("manifest", func(r container.Resolver) (any, error) {
		cfg, err := container.Resolve[*config.Config](r, "config")
		if err != nil {
			return nil, err
		}
		return config.LoadManifest(cfg.Container.Manifest)
	})
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider builds the logrus logger from "config". At boot the
// container switches to it.
//
// Bound abstracts:
//   - "log"     → *logrus.Logger
//   - "logger"  → alias of "log"
//
// Laravel equivalent:
//
//	// Illuminate\Log\LogServiceProvider
//	$app->singleton('log', fn($app) => new LogManager($app));
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) {
	app.Singleton("log", func(r container.Resolver) (any, error) {
		cfg, err := container.Resolve[*config.Config](r, "config")
		if err != nil {
			return nil, err
		}
		return logging.New(cfg), nil
	})
	_ = app.Alias("logger", "log")
}

// Boot hands the configured logger to the container, so its own entries
// follow LOG_LEVEL and LOG_FORMAT.
func (p *LogServiceProvider) Boot(app *container.Container) {
	log, err := container.Resolve[*logrus.Logger](app, "log")
	if err != nil {
		app.Logger().WithError(err).Warn("log: keeping the standard logger")
		return
	}
	app.SetLogger(log)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound abstracts:
//   - "router"  → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(r container.Resolver) (any, error) {
		log, err := container.Resolve[*logrus.Logger](r, "log")
		if err != nil {
			return nil, err
		}
		return routing.New(r.Container(), log), nil
	})
}
