// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built instances,
// aliases, tags, contextual bindings, extension (decoration), autowiring of
// constructible types, Call and setter injection.
//
// It mirrors the public API of Laravel's Illuminate\Container\Container as
// closely as Go's type system allows. Go cannot build a type from its name, so
// constructible types are declared once with their constructor (see Type and
// the reflector package); the container autowires their parameters.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot() (safe to resolve everything after this)
//  4. Serve requests
//
// # Bindings
//
//	// Transient: new instance every Make()
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func(r container.Resolver) (any, error) { return &Foo{}, nil })
//
//	// Singleton: created once, reused
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache)
//	c.Singleton("cache", func(r container.Resolver) (any, error) {
//	    cfg, err := container.Resolve[*Config](r, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.NewRedis(cfg), nil
//	})
//
//	// Pre-built value
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
//
//	// Set picks for you: factories become transient bindings, values instances.
//	c.Set("clock", time.Now)            // a value: func() time.Time is not a factory
//	c.Set("uuid", func(container.Resolver) any { return uuid.NewString() })
//
//	// Alias
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cacheManager", "cache")
//
// # Autowiring
//
//	type Mailer struct{ log *logrus.Logger }
//	func NewMailer(log *logrus.Logger) *Mailer { return &Mailer{log: log} }
//
//	key, _ := c.Type(NewMailer)        // key == reflector.KeyOf[*Mailer]()
//	mailer, err := container.Make[*Mailer](c)
//
// Scalars are never guessed. Name them and give them a default, or bind them
// contextually:
//
//	c.Type(NewUploader, reflector.Named("disk").OneOf("S3Disk", "LocalDisk"),
//	    reflector.Named("path").Default("/tmp/uploads"))
//	c.When(reflector.KeyOf[*Uploader]()).Needs("$path").GiveValue("/srv/uploads")
//
// # Resolving
//
//	// Untyped
//	// Laravel: $app->make(Cache::class)
//	raw, err := c.Make("cache")
//
//	// Generic (preferred: no type assertion required)
//	cache, err := container.Resolve[*RedisCache](c, "cache")
//
//	// Explicit arguments, by parameter name or abstract; never cached
//	mailer, err := c.MakeWith(reflector.KeyOf[*Mailer](), container.Args{"from": "ops@example.com"})
//
//	// Call any func, or "abstract@Method"
//	out, err := c.Call("ReportController@Show", container.Args{"id": "7"})
//
// # Errors
//
// Every failure is one of four typed errors, each matching a sentinel:
//
//	errors.Is(err, container.ErrEntryNotFound)
//	errors.Is(err, container.ErrBindingResolution)
//	errors.Is(err, container.ErrCircularAlias)
//	errors.Is(err, container.ErrConstructionCycle)
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)
//	//              ->needs(Filesystem::class)
//	//              ->give(fn() => new S3Filesystem)
//	c.When("PhotoController").
//	    Needs("Filesystem").
//	    Give(func(container.Resolver) (any, error) { return &S3Filesystem{}, nil })
//
// # Tags
//
//	// Laravel: $app->tag([CpuReport::class, MemReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemReport"}, "reports")
//	reports, err := c.Tagged("reports")  // []any
//
// # Extend / Decorate
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, r container.Resolver) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", func(r container.Resolver) (any, error) {
//	        cfg, err := container.Resolve[*config.Config](r, "config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return mail.NewSMTP(cfg.Mail), nil
//	    })
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) {
//	    // safe to resolve other bindings here
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool     { return true }
//	func (p *HeavyProvider) Provides() []string   { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(container.Resolver) (any, error) {
//	        return heavySetup(), nil // only called on first app.Make("heavy")
//	    })
//	}
package container
