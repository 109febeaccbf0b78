package container

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/framework/reflector"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Args are explicit arguments for Make/Call/InjectOn, keyed by parameter
// name or by abstract (type key).
//
//	c.MakeWith("ReportMailer", container.Args{"from": "ops@example.com"})
//	c.Call(handler, container.Args{reflector.KeyOf[*http.Request](): req})
type Args map[string]any

// Extender wraps an already-resolved instance with decorator logic.
type Extender func(instance any, r Resolver) any

// Resolver is what factories, extenders and autowired callables see of the
// container. Inside a factory it is bound to the operation in progress.
type Resolver interface {
	Make(abstract string) (any, error)
	MakeWith(abstract string, args Args) (any, error)
	Call(callable any, args Args) (any, error)
	InjectOn(target any, args Args, required ...string) (any, error)
	Has(abstract string) bool

	// Args returns the explicit arguments of the abstract being built.
	Args() Args

	// Container returns the owning container.
	Container() *Container
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container. It mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Set / Bind / Singleton / Instance / Alias
//   - Make / MakeWith / Resolve (generic)
//   - Autowiring of catalog types, Call, and setter injection (InjectOn)
//   - Tags, Extend, contextual binding, deferred loading
//   - Rebound and resolved event callbacks
type Container struct {
	id      string
	log     atomic.Pointer[logrus.Entry]
	catalog *reflector.Catalog

	mu sync.RWMutex

	bindings  *bindingRegistry
	instances *instanceStore
	aliases   *aliasResolver

	// abstract → extender funcs
	extenders map[string][]Extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// abstract → loader run once on first resolution (deferred providers)
	deferred map[string]func()

	reboundCallbacks map[string][]func(any)
	afterResolving   []func(string, any)
}

// New creates an empty container. The container binds itself as "container".
func New(opts ...Option) *Container {
	c := &Container{
		id:      uuid.NewString(),
		catalog: reflector.NewCatalog(),
	}
	c.SetLogger(logrus.StandardLogger())
	for _, opt := range opts {
		opt(c)
	}
	c.reset()

	c.Instance("container", c)
	_ = c.Alias(reflector.KeyOf[*Container](), "container")
	return c
}

func (c *Container) reset() {
	c.bindings = newBindingRegistry()
	c.instances = newInstanceStore()
	c.aliases = newAliasResolver()
	c.extenders = make(map[string][]Extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]Factory)
	c.deferred = make(map[string]func())
	c.reboundCallbacks = make(map[string][]func(any))
	c.afterResolving = nil
}

// ID returns the unique id logged with every entry of this container.
func (c *Container) ID() string { return c.id }

// Logger returns the logger entries of this container are written to.
func (c *Container) Logger() logrus.FieldLogger { return c.logger() }

// SetLogger replaces the logger. It is safe to call while the container is
// in use; the application swaps in the configured logger at boot.
func (c *Container) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		return
	}
	c.log.Store(l.WithField("container", c.id))
}

func (c *Container) logger() *logrus.Entry { return c.log.Load() }

// Catalog returns the constructible-type catalog used for autowiring.
func (c *Container) Catalog() *reflector.Catalog { return c.catalog }

// Container returns c; it lets *Container satisfy Resolver.
func (c *Container) Container() *Container { return c }

// Args returns nil: explicit args only exist inside an operation.
func (c *Container) Args() Args { return nil }

// ── Registration ──────────────────────────────────────────────────────────────

// Set registers a factory (Factory, func(Resolver) (any, error) or
// func(Resolver) any) as a transient binding. Any other value is registered
// as a shared instance.
func (c *Container) Set(abstract string, factoryOrValue any) {
	if f, ok := asFactory(factoryOrValue); ok {
		c.Bind(abstract, f)
		return
	}
	c.Instance(abstract, factoryOrValue)
}

func asFactory(v any) (Factory, bool) {
	switch f := v.(type) {
	case Factory:
		return f, f != nil
	case func(Resolver) (any, error):
		return f, f != nil
	case func(Resolver) any:
		if f == nil {
			return nil, false
		}
		return func(r Resolver) (any, error) { return f(r), nil }, true
	}
	return nil, false
}

// Bind registers a transient (new instance each Make) factory.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(r container.Resolver) (any, error) {
//	    db, err := container.Resolve[*sql.DB](r, "db")
//	    return &EloquentUserRepository{DB: db}, err
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.bind(abstract, factory, false)
}

// Singleton registers a factory whose result is cached after first resolution.
//
// Factories run outside the container lock. Goroutines that race on the first
// resolution may each run the factory; the first stored result wins and is
// returned to all of them, the others are discarded. Factories with side
// effects that must happen once should guard them with a sync.Once.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
func (c *Container) Singleton(abstract string, factory Factory) {
	c.bind(abstract, factory, true)
}

// bind drops any alias named abstract and any stale instance, so the next
// Make rebuilds with the new factory.
func (c *Container) bind(abstract string, factory Factory, shared bool) {
	c.mu.Lock()
	c.aliases.forget(abstract)
	_, wasResolved := c.instances.get(abstract)
	c.instances.evict(abstract)
	c.bindings.set(abstract, factory, shared)
	c.mu.Unlock()

	c.logger().WithFields(logrus.Fields{"abstract": abstract, "shared": shared}).Debug("container: bound")

	if wasResolved {
		c.rebound(abstract)
	}
}

// Instance registers a pre-built value as a shared instance.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	c.aliases.forget(abstract)
	_, hadInstance := c.instances.get(abstract)
	wasBound := hadInstance || c.bindings.has(abstract)
	c.bindings.forget(abstract)
	c.instances.put(abstract, instance)
	cbs := c.reboundCallbacks[abstract]
	c.mu.Unlock()

	c.logger().WithField("abstract", abstract).Debug("container: instance registered")

	if wasBound {
		for _, cb := range cbs {
			cb(instance)
		}
	}
}

// Alias registers alias as another name for target. Chains are allowed;
// aliasing a name to itself fails with *CircularAliasError.
//
//	// Laravel: $app->alias(Cache::class, 'cache'), note the reversed order.
//	c.Alias("cacheManager", "cache")
func (c *Container) Alias(alias, target string) error {
	c.mu.Lock()
	err := c.aliases.alias(alias, target)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.logger().WithFields(logrus.Fields{"alias": alias, "abstract": target}).Debug("container: aliased")
	return nil
}

// Type registers a constructible type in the container's catalog and returns
// its abstract. It does not create a binding.
//
//	c.Type(NewMailer)  // c.Make(reflector.KeyOf[*Mailer]()) now autowires NewMailer
func (c *Container) Type(ctor any, params ...reflector.Param) (string, error) {
	return c.catalog.Register(ctor, params...)
}

// Defer registers a loader that runs once, the first time abstract is
// resolved, before the lookup continues. Deferred providers use it.
//
// The loader is claimed before it runs, so it may resolve abstract itself
// (a provider's Boot resolving its own service). Lookups made while it runs
// see whatever it has registered so far.
func (c *Container) Defer(abstract string, load func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferred[abstract] = load
}

// runDeferred claims and runs the loader registered for key, if any.
func (c *Container) runDeferred(key string) {
	c.mu.Lock()
	load := c.deferred[key]
	delete(c.deferred, key)
	c.mu.Unlock()

	if load != nil {
		load()
	}
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When("PhotoController").Needs("Filesystem").Give(func(r container.Resolver) (any, error) {
//	    return filesystem.NewS3(...), nil
//	})
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// contextualFor returns the contextual factory concrete has for any of needs.
func (c *Container) contextualFor(concrete string, needs ...string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.contextual[concrete]
	if !ok {
		return nil
	}
	for _, n := range needs {
		if f, ok := m[n]; ok {
			return f
		}
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, r container.Resolver) any {
//	    return logging.NewTimestampWrapper(instance.(*Logger))
//	})
func (c *Container) Extend(abstract string, fn Extender) error {
	c.mu.Lock()
	key, err := c.aliases.resolve(abstract)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.extenders[key] = append(c.extenders[key], fn)
	inst, resolved := c.instances.get(key)
	c.mu.Unlock()

	// Already resolved as shared: decorate in place and refire rebound.
	if resolved {
		extended := fn(inst, c)
		c.mu.Lock()
		c.instances.put(key, extended)
		cbs := c.reboundCallbacks[key]
		c.mu.Unlock()
		for _, cb := range cbs {
			cb(extended)
		}
	}
	return nil
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves all abstracts registered under a tag, in tagging order.
//
//	// Laravel: $app->tagged('reports')
//	reports, err := c.Tagged("reports")
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	abstracts := append([]string(nil), c.tags[tag]...)
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		v, err := c.Make(abs)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Make("UserRepository")
func (c *Container) Make(abstract string) (any, error) {
	return c.newResolution().make(abstract, nil)
}

// MakeWith resolves an abstract with explicit arguments. Explicit arguments
// bypass the shared instance cache.
//
//	// Laravel: $app->makeWith(ReportMailer::class, ['from' => 'ops@example.com'])
func (c *Container) MakeWith(abstract string, args Args) (any, error) {
	return c.newResolution().make(abstract, args)
}

// MustMake is Make that panics on failure.
func (c *Container) MustMake(abstract string) any {
	v, err := c.Make(abstract)
	if err != nil {
		panic(err)
	}
	return v
}

// Call invokes callable with its parameters resolved from the container.
// callable may be a func, a reflector.Function, or an "abstract@Method" string.
//
//	// Laravel: $app->call([$controller, 'show'], ['id' => 7])
//	out, err := c.Call(controller.Show, container.Args{"id": "7"})
func (c *Container) Call(callable any, args Args) (any, error) {
	return c.newResolution().call(callable, args)
}

// InjectOn calls every SetX(dep) method of target with a resolved dependency
// and returns target. Setters whose dependency cannot be resolved are skipped
// unless they are listed in required or supplied through args.
//
//	c.InjectOn(report, nil)              // optional setters only
//	c.InjectOn(report, nil, "Mailer")    // SetMailer must succeed
func (c *Container) InjectOn(target any, args Args, required ...string) (any, error) {
	return c.newResolution().injectOn(target, args, required)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has returns true if the abstract can be resolved: it has a binding, an
// instance, a deferred provider, or is a constructible type.
func (c *Container) Has(abstract string) bool {
	ok, _ := c.canProduce(abstract)
	return ok
}

// canProduce is Has, but reports alias cycles instead of hiding them.
func (c *Container) canProduce(abstract string) (bool, error) {
	c.mu.RLock()
	key, err := c.aliases.resolve(abstract)
	if err != nil {
		c.mu.RUnlock()
		return false, err
	}
	_, instance := c.instances.get(key)
	_, deferred := c.deferred[key]
	ok := instance || deferred || c.bindings.has(key)
	c.mu.RUnlock()

	return ok || c.catalog.Has(key), nil
}

// Bound returns true if an abstract has been registered (binding, instance
// or alias). Constructible types are not "bound".
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.aliases.isAlias(abstract) {
		return true
	}
	_, hasInstance := c.instances.get(abstract)
	return hasInstance || c.bindings.has(abstract)
}

// Resolved returns true if a shared instance is cached for the abstract.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, err := c.aliases.resolve(abstract)
	if err != nil {
		return false
	}
	_, ok := c.instances.get(key)
	return ok
}

// Forget removes all registrations for an abstract (binding + instance).
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, err := c.aliases.resolve(abstract)
	if err != nil {
		key = abstract
	}
	c.bindings.forget(key)
	c.instances.evict(key)
}

// ForgetInstance drops the cached shared instance; the binding stays.
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) ForgetInstance(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, err := c.aliases.resolve(abstract); err == nil {
		c.instances.evict(key)
	}
}

// Flush resets the entire container: bindings, instances, aliases, tags,
// extenders, contextual bindings, deferred loaders and callbacks.
// Constructible types in the catalog are kept.
func (c *Container) Flush() {
	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	c.logger().Debug("container: flushed")
}

// Bindings returns all registered abstract keys, sorted (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.bindings.keys()
	for _, k := range c.instances.keys() {
		if !c.bindings.has(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Stats counts stored entries. Only registration grows them; resolving
// transient bindings or constructible types never does.
type Stats struct {
	Bindings  int
	Instances int
	Aliases   int
}

// Stats returns the current entry counts.
func (c *Container) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Bindings:  c.bindings.count(),
		Instances: c.instances.count(),
		Aliases:   c.aliases.count(),
	}
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback to be called whenever an abstract is re-bound.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reboundCallbacks[abstract] = append(c.reboundCallbacks[abstract], cb)
}

// AfterResolving registers a callback fired after any abstract is built.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// rebound rebuilds abstract and hands the new instance to its callbacks.
func (c *Container) rebound(abstract string) {
	c.mu.RLock()
	cbs := c.reboundCallbacks[abstract]
	c.mu.RUnlock()
	if len(cbs) == 0 {
		return
	}

	instance, err := c.Make(abstract)
	if err != nil {
		c.logger().WithError(err).WithField("abstract", abstract).Warn("container: rebuild after rebinding failed")
		return
	}
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and converts the result to T.
//
//	// Instead of: v, err := c.Make("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](r Resolver, abstract string) (T, error) {
	var zero T
	instance, err := r.Make(abstract)
	if err != nil {
		return zero, err
	}
	return convert[T](abstract, instance)
}

// MustResolve is like Resolve but panics on failure.
func MustResolve[T any](r Resolver, abstract string) T {
	v, err := Resolve[T](r, abstract)
	if err != nil {
		panic(err)
	}
	return v
}

// Make resolves T by its type key.
//
//	mailer, err := container.Make[*Mailer](c)
func Make[T any](r Resolver) (T, error) {
	return Resolve[T](r, reflector.KeyOf[T]())
}

func convert[T any](abstract string, instance any) (T, error) {
	if typed, ok := instance.(T); ok {
		return typed, nil
	}
	var zero T
	v, err := coerce(instance, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, &BindingResolutionError{Abstract: abstract, Cause: err}
	}
	out, _ := v.Interface().(T)
	return out, nil
}
