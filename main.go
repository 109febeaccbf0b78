package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/reflector"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── Domain ───────────────────────────────────────────────────────────────────

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserRepository is resolved by interface; the binding picks the concrete type.
type UserRepository interface {
	Find(id string) (*User, bool)
	All() []*User
}

type memoryUsers struct{ users map[string]*User }

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]*User{
		"1": {ID: "1", Name: "Alice"},
		"2": {ID: "2", Name: "Bob"},
	}}
}

func (m *memoryUsers) Find(id string) (*User, bool) {
	u, ok := m.users[id]
	return u, ok
}

func (m *memoryUsers) All() []*User {
	return []*User{m.users["1"], m.users["2"]}
}

// ── Controllers ──────────────────────────────────────────────────────────────

type UserController struct {
	app.Controller
	users UserRepository
	log   logrus.FieldLogger
}

// NewUserController is autowired: the repository comes from its binding and
// the logger from the "log" singleton.
func NewUserController(users UserRepository, log *logrus.Logger) *UserController {
	return &UserController{users: users, log: log}
}

func (c *UserController) Index() []*User { return c.users.All() }

func (c *UserController) Show(id string) (*User, error) {
	c.log.WithField("id", id).Debug("users: show")
	u, ok := c.users.Find(id)
	if !ok {
		return nil, gohttp.Abort(http.StatusNotFound, "User not found.")
	}
	return u, nil
}

// ── Providers ────────────────────────────────────────────────────────────────

type AppServiceProvider struct{ container.BaseProvider }

func (p *AppServiceProvider) Register(a *container.Container) {
	a.Singleton(reflector.KeyOf[UserRepository](), func(container.Resolver) (any, error) {
		return newMemoryUsers(), nil
	})
	a.Catalog().MustRegister(NewUserController, reflector.Skip, reflector.Named("log").OneOf("log"))
}

func (p *AppServiceProvider) Boot(a *container.Container) {
	r := container.MustResolve[*routing.Router](a, "router")
	users := reflector.KeyOf[*UserController]()

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{"message": "Welcome to Go-IoC!"})
	})

	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/users", users+"@Index")
		api.Get("/users/{id}", reflector.Fn(users+"@Show", reflector.Named("id")))
	})

	r.Group(func(protected *routing.Router) {
		protected.Middleware(AuthMiddleware)
		protected.Get("/profile", func(req *gohttp.Request) map[string]any {
			return map[string]any{"token": req.BearerToken()}
		})
	})
}

// AuthMiddleware is an example JWT/token guard.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := gohttp.NewRequest(r)
		res := gohttp.NewResponse(w)

		if req.BearerToken() == "" {
			res.Unauthorized()
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	application := app.New() // loads .env automatically
	application.Register(&AppServiceProvider{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("app: stopped")
	}
}
