package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	gohttp "github.com/km-arc/go-ioc/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newJSONRequest(t *testing.T, body string) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return gohttp.NewRequest(req)
}

func newFormRequest(t *testing.T, values url.Values) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return gohttp.NewRequest(req)
}

func newGetRequest(t *testing.T, rawQuery string) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return gohttp.NewRequest(req)
}

// ── Bind JSON ────────────────────────────────────────────────────────────────

func TestRequest_BindJSON(t *testing.T) {
	type user struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	req := newJSONRequest(t, `{"name":"Alice","email":"alice@example.com"}`)

	var u user
	if err := req.Bind(&u); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if u.Name != "Alice" {
		t.Errorf("Name: got %q want %q", u.Name, "Alice")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email: got %q want %q", u.Email, "alice@example.com")
	}
}

func TestRequest_BindJSON_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	r := gohttp.NewRequest(req)

	var v any
	err := r.Bind(&v)
	if err == nil {
		t.Error("expected error for empty body, got nil")
	}
}

func TestRequest_BindJSON_InvalidJSON(t *testing.T) {
	req := newJSONRequest(t, `{bad json}`)
	var v map[string]any
	err := req.Bind(&v)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	he, ok := gohttp.AsHTTPError(err)
	if !ok || he.Status != http.StatusBadRequest {
		t.Errorf("Bind error: got %v, want a 400 *HTTPError", err)
	}
}

// ── Bind Form ────────────────────────────────────────────────────────────────

func TestRequest_BindForm(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	vals := url.Values{"name": {"Bob"}}
	req := newFormRequest(t, vals)

	var p payload
	if err := req.Bind(&p); err != nil {
		t.Fatalf("Bind form error: %v", err)
	}
	if p.Name != "Bob" {
		t.Errorf("Name: got %q want %q", p.Name, "Bob")
	}
}

// ── Query ─────────────────────────────────────────────────────────────────────

func TestRequest_Query(t *testing.T) {
	req := newGetRequest(t, "page=2&limit=10")

	if got := req.Query("page"); got != "2" {
		t.Errorf("Query page: got %q want %q", got, "2")
	}
	if got := req.Query("limit"); got != "10" {
		t.Errorf("Query limit: got %q want %q", got, "10")
	}
}

func TestRequest_Query_Fallback(t *testing.T) {
	req := newGetRequest(t, "")
	if got := req.Query("missing", "1"); got != "1" {
		t.Errorf("Query fallback: got %q want %q", got, "1")
	}
}

// ── Headers / Auth ────────────────────────────────────────────────────────────

func TestRequest_Header(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Custom", "value123")
	req := gohttp.NewRequest(r)

	if got := req.Header("X-Custom"); got != "value123" {
		t.Errorf("Header: got %q want %q", got, "value123")
	}
}

func TestRequest_BearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer my-secret-token")
	req := gohttp.NewRequest(r)

	if got := req.BearerToken(); got != "my-secret-token" {
		t.Errorf("BearerToken: got %q want %q", got, "my-secret-token")
	}
}

func TestRequest_BearerToken_Missing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	req := gohttp.NewRequest(r)

	if got := req.BearerToken(); got != "" {
		t.Errorf("BearerToken should be empty, got %q", got)
	}
}

// ── Method / Path ─────────────────────────────────────────────────────────────

func TestRequest_Method(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/resource/1", nil)
	req := gohttp.NewRequest(r)
	if req.Method() != http.MethodDelete {
		t.Errorf("Method: got %q want DELETE", req.Method())
	}
}

func TestRequest_Path(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req := gohttp.NewRequest(r)
	if req.Path() != "/api/v1/users" {
		t.Errorf("Path: got %q want /api/v1/users", req.Path())
	}
}

// ── Route params ──────────────────────────────────────────────────────────────

func TestRequest_RouteParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "42")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	req := gohttp.NewRequest(r)
	if got := req.RouteParam("id"); got != "42" {
		t.Errorf("RouteParam: got %q want %q", got, "42")
	}
	if req.Context() != r.Context() {
		t.Error("Context() should return the request context")
	}
}

func TestRequest_Params(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/files/7/a/b", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "7")
	rctx.URLParams.Add("*", "a/b")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	got := gohttp.NewRequest(r).Params()
	if len(got) != 1 || got["id"] != "7" {
		t.Errorf("Params: got %v want map[id:7]", got)
	}
}

func TestRequest_Params_NoRoute(t *testing.T) {
	req := newGetRequest(t, "")
	if got := req.Params(); got != nil {
		t.Errorf("Params outside a route: got %v want nil", got)
	}
}

func TestRequest_ID(t *testing.T) {
	var id string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = gohttp.NewRequest(r).ID()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if id == "" {
		t.Error("ID should return the RequestID middleware's id")
	}
	if got := newGetRequest(t, "").ID(); got != "" {
		t.Errorf("ID without middleware: got %q want empty", got)
	}
}
