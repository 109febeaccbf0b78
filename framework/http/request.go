package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Request is what container-invoked actions receive for the current request:
// route parameters, the decoded body and the auth token.
//
//	func (c *UserController) Store(req *gohttp.Request) (*User, error) {
//	    var in NewUser
//	    if err := req.Bind(&in); err != nil {
//	        return nil, err // 400
//	    }
//	    return c.users.Create(in.Name), nil
//	}
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// Context returns the request context.
func (req *Request) Context() context.Context { return req.raw.Context() }

// ID returns the id set by the RequestID middleware, or "".
func (req *Request) ID() string { return middleware.GetReqID(req.raw.Context()) }

// Method returns the HTTP method.
func (req *Request) Method() string { return req.raw.Method }

// Path returns the URL path.
func (req *Request) Path() string { return req.raw.URL.Path }

// ── Route parameters ─────────────────────────────────────────────────────────

// RouteParam returns a single route parameter.
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Params returns the named route parameters of the matched route. The
// catch-all "*" parameter is left out.
func (req *Request) Params() map[string]string {
	rctx := chi.RouteContext(req.raw.Context())
	if rctx == nil {
		return nil
	}
	out := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key != "*" {
			out[key] = rctx.URLParams.Values[i]
		}
	}
	return out
}

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// ── Body ─────────────────────────────────────────────────────────────────────

// Bind decodes a JSON or url-encoded form body into v. Form fields map
// through the `json` tags of v. A body that cannot be decoded yields an
// *HTTPError with status 400, so actions can return it as is.
func (req *Request) Bind(v any) error {
	var err error
	if strings.HasPrefix(req.raw.Header.Get("Content-Type"), "application/json") {
		err = req.bindJSON(v)
	} else {
		err = req.bindForm(v)
	}
	if err != nil {
		return Abort(http.StatusBadRequest, "Malformed request body: "+err.Error())
	}
	return nil
}

func (req *Request) bindJSON(v any) error {
	defer req.raw.Body.Close()
	err := json.NewDecoder(req.raw.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("empty request body")
	}
	return err
}

func (req *Request) bindForm(v any) error {
	if err := req.raw.ParseForm(); err != nil {
		return err
	}
	m := make(map[string]any, len(req.raw.PostForm))
	for k, vals := range req.raw.PostForm {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ── Headers ──────────────────────────────────────────────────────────────────

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// BearerToken extracts the token from Authorization: Bearer <token>.
func (req *Request) BearerToken() string {
	token, ok := strings.CutPrefix(req.raw.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return token
}
