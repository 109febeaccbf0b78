package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/providers"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly,
// exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates the application and registers the framework providers.
// The container becomes the process-wide current container.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}
	c.Instance("app", app)

	// Register framework core providers (same order as Laravel)
	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LogServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})

	container.SetCurrent(c)
	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot applies the container manifest, then runs the Boot() phase on all
// providers. Manifest errors are returned; Boot is not run in that case.
func (a *Application) Boot() error {
	if a.Providers.Booted() {
		return nil
	}
	if err := a.applyManifest(); err != nil {
		return err
	}
	a.Providers.Boot()
	a.Log().WithField("providers", len(a.Providers.Providers())).Debug("app: booted")
	return nil
}

// applyManifest registers the aliases and tags declared in YAML. Aliases are
// applied in sorted order so a cycle is always reported the same way.
func (a *Application) applyManifest() error {
	m, err := container.Resolve[*config.Manifest](a.Container, "manifest")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(m.Aliases))
	for alias := range m.Aliases {
		names = append(names, alias)
	}
	slices.Sort(names)
	for _, alias := range names {
		if err := a.Alias(alias, m.Aliases[alias]); err != nil {
			return fmt.Errorf("app: manifest alias %q: %w", alias, err)
		}
	}

	tags := make([]string, 0, len(m.Tags))
	for tag := range m.Tags {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	for _, tag := range tags {
		a.Tag(m.Tags[tag], tag)
	}
	return nil
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, "config")
}

// Log resolves the application logger.
func (a *Application) Log() *logrus.Logger {
	return container.MustResolve[*logrus.Logger](a.Container, "log")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container, "router")
}

// Run boots the application (if needed) and serves HTTP until ctx is done.
// The current container is flushed whenever serving stops.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}
	defer container.FlushCurrent()

	cfg := a.Config()
	log := a.Log()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"app":  cfg.App.Name,
			"addr": srv.Addr,
			"env":  cfg.App.Env,
		}).Info("app: listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("app: shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}
func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
