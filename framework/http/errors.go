package http

import (
	"errors"
	"fmt"
)

// HTTPError is an error that carries the response status for an action.
//
//	func (c *UserController) Show(id string) (*User, error) {
//	    return nil, gohttp.Abort(http.StatusNotFound, "User not found.")
//	}
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Abort returns an *HTTPError.
//
//	// Laravel: abort(404, 'User not found.')
func Abort(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// AsHTTPError finds an *HTTPError in err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
