package routing

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/reflector"
)

// Router wraps chi.Router with Laravel-style helpers. Actions that are not
// plain http handlers are invoked through the container, so their parameters
// are autowired.
type Router struct {
	app *container.Container
	mux chi.Router
	log logrus.FieldLogger
}

// New creates a Router with sane defaults (RequestID, RealIP, request log,
// Recoverer). A nil log uses logrus.StandardLogger().
func New(app *container.Container, log logrus.FieldLogger) *Router {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Router{app: app, mux: chi.NewRouter(), log: log}
	r.mux.Use(middleware.RequestID)
	r.mux.Use(middleware.RealIP)
	r.mux.Use(r.logRequests)
	r.mux.Use(middleware.Recoverer)
	return r
}

func (r *Router) sub(mx chi.Router) *Router {
	return &Router{app: r.app, mux: mx, log: r.log}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

// An action is one of:
//   - http.Handler, http.HandlerFunc or func(http.ResponseWriter, *http.Request)
//   - any other func, or a reflector.Function carrying parameter names
//   - an "abstract@Method" string naming a controller in the container
//
// Container-invoked actions may declare *http.Request, http.ResponseWriter,
// *gohttp.Request, *gohttp.Response and context.Context; route parameters are
// passed by name (see reflector.Named).
//
//	r.Get("/users/{id}", reflector.Fn(users.Show, reflector.Named("id")))
//	r.Get("/users", "UserController@Index")
func (r *Router) Get(pattern string, action any)    { r.mux.Get(pattern, r.handler(action)) }
func (r *Router) Post(pattern string, action any)   { r.mux.Post(pattern, r.handler(action)) }
func (r *Router) Put(pattern string, action any)    { r.mux.Put(pattern, r.handler(action)) }
func (r *Router) Patch(pattern string, action any)  { r.mux.Patch(pattern, r.handler(action)) }
func (r *Router) Delete(pattern string, action any) { r.mux.Delete(pattern, r.handler(action)) }

// Any registers an action for all common HTTP methods.
func (r *Router) Any(pattern string, action any) {
	h := r.handler(action)
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group (Laravel: Route::group([], fn)).
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(r.sub(mx))
	})
}

// Prefix creates a sub-router with a URL prefix (Laravel: Route::prefix('/api')).
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(r.sub(mx))
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Resource routes ──────────────────────────────────────────────────────────

// Resource registers standard RESTful routes for the controller bound as
// abstract. The controller is resolved on each request.
//
//	GET    /photos           → Index
//	POST   /photos           → Store
//	GET    /photos/{id}      → Show
//	PUT    /photos/{id}      → Update
//	DELETE /photos/{id}      → Destroy
func (r *Router) Resource(pattern, abstract string) {
	r.Get(pattern, abstract+"@Index")
	r.Post(pattern, abstract+"@Store")
	r.Get(pattern+"/{id}", abstract+"@Show")
	r.Put(pattern+"/{id}", abstract+"@Update")
	r.Patch(pattern+"/{id}", abstract+"@Update")
	r.Delete(pattern+"/{id}", abstract+"@Destroy")
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param, like $request->route('id')
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Dispatch ─────────────────────────────────────────────────────────────────

func (r *Router) handler(action any) http.HandlerFunc {
	switch h := action.(type) {
	case http.HandlerFunc:
		return h
	case func(http.ResponseWriter, *http.Request):
		return h
	case http.Handler:
		return h.ServeHTTP
	}
	return func(w http.ResponseWriter, req *http.Request) {
		r.dispatch(action, w, req)
	}
}

// dispatch calls action through the container. A returned error becomes an
// error response; a non-nil result is sent as {"data": ...} unless the action
// already wrote; nothing at all yields 204.
func (r *Router) dispatch(action any, w http.ResponseWriter, req *http.Request) {
	res := gohttp.NewResponse(w)

	out, err := r.app.Call(action, r.actionArgs(res, req))
	if err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"method":     req.Method,
			"path":       req.URL.Path,
			"request_id": middleware.GetReqID(req.Context()),
		}).Warn("http: action failed")
		if !res.Written() {
			res.Fail(err)
		}
		return
	}

	switch {
	case res.Written():
	case out == nil:
		res.NoContent()
	default:
		res.Success(out)
	}
}

// actionArgs are the explicit arguments every action can ask for.
func (r *Router) actionArgs(res *gohttp.Response, req *http.Request) container.Args {
	wrapped := gohttp.NewRequest(req)
	args := container.Args{
		reflector.KeyOf[*http.Request]():       req,
		reflector.KeyOf[http.ResponseWriter](): res.Raw(),
		reflector.KeyOf[*gohttp.Request]():     wrapped,
		reflector.KeyOf[*gohttp.Response]():    res,
		reflector.KeyOf[context.Context]():     req.Context(),
	}
	for key, value := range wrapped.Params() {
		args[key] = value
	}
	return args
}

func (r *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		r.log.WithFields(logrus.Fields{
			"method":     req.Method,
			"path":       req.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(req.Context()),
		}).Info("http: request")
	})
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
