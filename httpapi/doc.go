// Package httpapi exposes login, users and todos over HTTP.
//
// Routes are registered on a standard library ServeMux using method and
// wildcard patterns. Protected routes sit behind auth.Guard middleware;
// handlers then apply ownership rules (self or admin, owner or admin) with
// the session the guard attached to the request context.
//
// Every response body is a JSON envelope carrying "success" and, on failure,
// a "message". Credential failures are always 401 with the same generic
// message so callers cannot tell an unknown email from a wrong password.
package httpapi
