// Package http provides Laravel-compatible request and response helpers.
//
// The router hands both wrappers to actions invoked through the container,
// keyed by type, so an action may simply declare them:
//
//	func (c *UserController) Store(req *gohttp.Request, res *gohttp.Response) { ... }
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	// Bind a JSON or form body into a struct; failures are 400 *HTTPError
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil {
//	    return nil, err
//	}
//
//	page   := req.Query("page", "1")
//	id     := req.RouteParam("id")   // chi
//	params := req.Params()           // every named route parameter
//	token  := req.BearerToken()
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.Success(data)             // 200 {"data": ...}
//	res.Created(data)             // 201 {"data": ...}
//	res.NoContent()               // 204
//	res.Error(400, "bad input")   // {"message": "bad input"}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.Fail(err)                 // *HTTPError status, otherwise 500
//
// # Errors
//
// Actions return Abort(status, message) to choose the error response:
//
//	return nil, gohttp.Abort(http.StatusNotFound, "User not found.")
package http
