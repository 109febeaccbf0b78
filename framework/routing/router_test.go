package routing_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/reflector"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func newRouter(t *testing.T) (*routing.Router, *container.Container) {
	t.Helper()
	log, _ := test.NewNullLogger()
	c := container.New(container.WithLogger(log))
	return routing.New(c, log), c
}

func do(t *testing.T, router *routing.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Get(t *testing.T) {
	r, _ := newRouter(t)
	r.Get("/hello", okHandler)

	rr := do(t, r, http.MethodGet, "/hello")
	if rr.Code != http.StatusOK {
		t.Errorf("GET /hello: got %d want 200", rr.Code)
	}
}

func TestRouter_Post(t *testing.T) {
	r, _ := newRouter(t)
	r.Post("/users", okHandler)

	rr := do(t, r, http.MethodPost, "/users")
	if rr.Code != http.StatusOK {
		t.Errorf("POST /users: got %d want 200", rr.Code)
	}
}

func TestRouter_Put(t *testing.T) {
	r, _ := newRouter(t)
	r.Put("/users/{id}", okHandler)

	rr := do(t, r, http.MethodPut, "/users/1")
	if rr.Code != http.StatusOK {
		t.Errorf("PUT /users/1: got %d want 200", rr.Code)
	}
}

func TestRouter_Patch(t *testing.T) {
	r, _ := newRouter(t)
	r.Patch("/users/{id}", okHandler)

	rr := do(t, r, http.MethodPatch, "/users/1")
	if rr.Code != http.StatusOK {
		t.Errorf("PATCH /users/1: got %d want 200", rr.Code)
	}
}

func TestRouter_Delete(t *testing.T) {
	r, _ := newRouter(t)
	r.Delete("/users/{id}", okHandler)

	rr := do(t, r, http.MethodDelete, "/users/1")
	if rr.Code != http.StatusOK {
		t.Errorf("DELETE /users/1: got %d want 200", rr.Code)
	}
}

func TestRouter_Any(t *testing.T) {
	r, _ := newRouter(t)
	r.Any("/ping", okHandler)

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		rr := do(t, r, method, "/ping")
		if rr.Code != http.StatusOK {
			t.Errorf("ANY %s /ping: got %d want 200", method, rr.Code)
		}
	}
}

// ── 404 for unregistered routes ──────────────────────────────────────────────

func TestRouter_NotFound(t *testing.T) {
	r, _ := newRouter(t)
	rr := do(t, r, http.MethodGet, "/not-registered")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

// ── Route params ─────────────────────────────────────────────────────────────

func TestRouter_Param(t *testing.T) {
	r, _ := newRouter(t)
	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := routing.Param(req, "id")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(id))
	})

	rr := do(t, r, http.MethodGet, "/users/42")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	if rr.Body.String() != "42" {
		t.Errorf("got body %q want %q", rr.Body.String(), "42")
	}
}

// ── Prefix / Group ───────────────────────────────────────────────────────────

func TestRouter_Prefix(t *testing.T) {
	r, _ := newRouter(t)
	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/users", okHandler)
	})

	rr := do(t, r, http.MethodGet, "/api/v1/users")
	if rr.Code != http.StatusOK {
		t.Errorf("GET /api/v1/users: got %d want 200", rr.Code)
	}

	// Root must 404
	rr2 := do(t, r, http.MethodGet, "/users")
	if rr2.Code != http.StatusNotFound {
		t.Errorf("GET /users: expected 404, got %d", rr2.Code)
	}
}

func TestRouter_Group_Middleware(t *testing.T) {
	called := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	r, _ := newRouter(t)
	r.Group(func(g *routing.Router) {
		g.Middleware(mw)
		g.Get("/protected", okHandler)
	})

	do(t, r, http.MethodGet, "/protected")
	if !called {
		t.Error("expected middleware to be called")
	}
}

// ── Resource routes ───────────────────────────────────────────────────────────

type stubController struct{}

func (s *stubController) Index(w http.ResponseWriter, r *http.Request)   { w.WriteHeader(200) }
func (s *stubController) Store(w http.ResponseWriter, r *http.Request)   { w.WriteHeader(201) }
func (s *stubController) Show(w http.ResponseWriter, r *http.Request)    { w.WriteHeader(200) }
func (s *stubController) Update(w http.ResponseWriter, r *http.Request)  { w.WriteHeader(200) }
func (s *stubController) Destroy(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) }

func TestRouter_Resource(t *testing.T) {
	r, c := newRouter(t)
	c.Instance("PhotoController", &stubController{})
	r.Resource("/photos", "PhotoController")

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/photos", 200},
		{"POST", "/photos", 201},
		{"GET", "/photos/1", 200},
		{"PUT", "/photos/1", 200},
		{"PATCH", "/photos/1", 200},
		{"DELETE", "/photos/1", 204},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := do(t, r, tt.method, tt.path)
			if rr.Code != tt.want {
				t.Errorf("got %d want %d", rr.Code, tt.want)
			}
		})
	}
}

// ── Container-invoked actions ─────────────────────────────────────────────────

type Greeter struct{ Greeting string }

func NewGreeter() *Greeter { return &Greeter{Greeting: "hello"} }

type userController struct{ greeter *Greeter }

func newUserController(g *Greeter) *userController { return &userController{greeter: g} }

func (c *userController) Show(id string) (map[string]string, error) {
	if id == "0" {
		return nil, gohttp.Abort(http.StatusNotFound, "User not found.")
	}
	return map[string]string{"id": id, "greeting": c.greeter.Greeting}, nil
}

func (c *userController) Store(req *gohttp.Request, res *gohttp.Response) error {
	var in struct {
		Name string `json:"name"`
	}
	if err := req.Bind(&in); err != nil {
		return err
	}
	res.Created(map[string]string{"name": in.Name})
	return nil
}

func TestRouter_Action_AutowiresAndSendsResult(t *testing.T) {
	r, c := newRouter(t)
	if _, err := c.Type(NewGreeter); err != nil {
		t.Fatal(err)
	}
	key, err := c.Type(newUserController)
	if err != nil {
		t.Fatal(err)
	}
	r.Get("/users/{id}", reflector.Fn(key+"@Show", reflector.Named("id")))

	rr := do(t, r, http.MethodGet, "/users/7")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	want := `{"data":{"greeting":"hello","id":"7"}}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Errorf("body: got %s want %s", got, want)
	}
}

func TestRouter_Action_HTTPErrorKeepsStatus(t *testing.T) {
	r, c := newRouter(t)
	_, _ = c.Type(NewGreeter)
	key, _ := c.Type(newUserController)
	r.Get("/users/{id}", reflector.Fn(key+"@Show", reflector.Named("id")))

	rr := do(t, r, http.MethodGet, "/users/0")
	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d want 404", rr.Code)
	}
}

func TestRouter_Action_ReceivesRequestAndResponseWrappers(t *testing.T) {
	r, c := newRouter(t)
	_, _ = c.Type(NewGreeter)
	key, _ := c.Type(newUserController)
	r.Post("/users", key+"@Store")

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("name=Ada"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d want 201", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"name":"Ada"`) {
		t.Errorf("body: got %s", rr.Body.String())
	}
}

func TestRouter_Action_MalformedBodyIs400(t *testing.T) {
	r, c := newRouter(t)
	_, _ = c.Type(NewGreeter)
	key, _ := c.Type(newUserController)
	r.Post("/users", key+"@Store")

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d want 400: %s", rr.Code, rr.Body.String())
	}
}

func TestRouter_Action_ContainerErrorIs500(t *testing.T) {
	r, _ := newRouter(t)
	r.Get("/broken", func(g *Greeter) string { return g.Greeting })

	rr := do(t, r, http.MethodGet, "/broken")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got %d want 500", rr.Code)
	}
}

func TestRouter_Action_NoResultIs204(t *testing.T) {
	r, _ := newRouter(t)
	var gotCtx context.Context
	r.Delete("/cache", func(ctx context.Context) error {
		gotCtx = ctx
		return nil
	})

	rr := do(t, r, http.MethodDelete, "/cache")
	if rr.Code != http.StatusNoContent {
		t.Errorf("got %d want 204", rr.Code)
	}
	if gotCtx == nil {
		t.Error("action should receive the request context")
	}
}

func TestRouter_Action_PlainErrorHidesMessage(t *testing.T) {
	r, _ := newRouter(t)
	r.Get("/fail", func() error { return errors.New("secret detail") })

	rr := do(t, r, http.MethodGet, "/fail")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got %d want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret detail") {
		t.Error("internal error message leaked into the response")
	}
}

// ── Handler() returns http.Handler ───────────────────────────────────────────

func TestRouter_HandlerInterface(t *testing.T) {
	r, _ := newRouter(t)
	r.Get("/ping", okHandler)
	var _ http.Handler = r.Handler()
}
