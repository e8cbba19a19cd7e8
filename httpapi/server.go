package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/jonwraymond/todogate/auth"
	"github.com/jonwraymond/todogate/observe"
	"github.com/jonwraymond/todogate/resilience"
	"github.com/jonwraymond/todogate/store"
)

// Authenticator verifies credentials and issues tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
}

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, in store.NewUser) (*store.User, error)
	ListUsers(ctx context.Context) ([]*store.User, error)
	GetUser(ctx context.Context, id int64) (*store.User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) (*store.User, error)
	DeleteUser(ctx context.Context, id int64) (*store.User, error)
}

// TodoStore persists todos.
type TodoStore interface {
	CreateTodo(ctx context.Context, in store.NewTodo) (*store.Todo, error)
	ListTodos(ctx context.Context, f store.TodoFilter) ([]*store.Todo, error)
	GetTodo(ctx context.Context, id int64) (*store.Todo, error)
	UpdateTodo(ctx context.Context, id int64, u store.TodoUpdate) (*store.Todo, error)
	DeleteTodo(ctx context.Context, id int64) (*store.Todo, error)
}

// Config configures the API.
type Config struct {
	// RequestTimeout bounds each request's context.
	// Default: 5 seconds
	RequestTimeout time.Duration

	// Greeting is the body served at "/".
	Greeting string
}

// Deps are the collaborators the API serves from. All but LoginLimiter and
// Ops are required.
type Deps struct {
	Authenticator Authenticator
	Guard         *auth.Guard
	Hasher        auth.Hasher
	Users         UserStore
	Todos         TodoStore

	// LoginLimiter throttles login attempts per client address.
	LoginLimiter *resilience.KeyedRateLimiter

	// Ops instruments each request. Nil disables instrumentation.
	Ops *observe.Middleware
}

// API serves the HTTP routes.
type API struct {
	cfg   Config
	deps  Deps
	authn *auth.Guard
	admin *auth.Guard
}

// New creates an API.
func New(cfg Config, deps Deps) *API {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.Greeting == "" {
		cfg.Greeting = "todogate"
	}
	return &API{
		cfg:   cfg,
		deps:  deps,
		authn: deps.Guard.Require(),
		admin: deps.Guard.Require(auth.RoleAdmin),
	}
}

// Register adds the API routes to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.Handle("GET /{$}", a.handle("root", a.root))
	mux.Handle("POST /auth/login", a.handle("login", a.login))

	mux.Handle("POST /users", a.handle("users.create", a.createUser))
	mux.Handle("GET /users", a.admin.Middleware(a.handle("users.list", a.listUsers)))
	mux.Handle("GET /users/{id}", a.authn.Middleware(a.handle("users.get", a.getUser)))
	mux.Handle("PUT /users/{id}", a.authn.Middleware(a.handle("users.update", a.updateUser)))
	mux.Handle("DELETE /users/{id}", a.admin.Middleware(a.handle("users.delete", a.deleteUser)))

	mux.Handle("POST /todos", a.authn.Middleware(a.handle("todos.create", a.createTodo)))
	mux.Handle("GET /todos", a.authn.Middleware(a.handle("todos.list", a.listTodos)))
	mux.Handle("GET /todos/{id}", a.authn.Middleware(a.handle("todos.get", a.getTodo)))
	mux.Handle("PUT /todos/{id}", a.authn.Middleware(a.handle("todos.update", a.updateTodo)))
	mux.Handle("DELETE /todos/{id}", a.authn.Middleware(a.handle("todos.delete", a.deleteTodo)))

	mux.HandleFunc("/", routeNotFound)
}

// Handler returns the API routes wrapped with the per-request deadline.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.Register(mux)
	return WithDeadline(a.cfg.RequestTimeout, mux)
}

// WithDeadline bounds every request context passed to next by timeout.
func WithDeadline(timeout time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handlerFunc is an HTTP handler that reports failure by returning an error.
// The error is written as the response; a handler that returns nil has
// written its own.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (a *API) handle(op string, fn handlerFunc) http.Handler {
	meta := observe.OpMeta{Name: op, Component: "http"}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		run := func(ctx context.Context) error {
			err := fn(w, r.WithContext(ctx))
			if err != nil {
				writeError(w, err)
			}
			return err
		}
		if a.deps.Ops == nil {
			_ = run(r.Context())
			return
		}
		_ = a.deps.Ops.Run(r.Context(), meta, run,
			observe.F("method", r.Method),
			observe.F("path", r.URL.Path),
		)
	})
}

func (a *API) root(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(a.cfg.Greeting))
	return nil
}

// routeNotFound answers any request no other pattern claims, including a
// known path with an unsupported method.
func routeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{"success": false, "message": "Route not found"})
}

// DecisionRecorder returns a guard hook that counts decisions under the
// "guard" operation and logs denials.
func DecisionRecorder(ops *observe.Middleware) auth.DecisionHook {
	meta := observe.OpMeta{Name: "guard", Component: "auth"}
	return func(ctx context.Context, d auth.Decision) {
		ops.Metrics().RecordOutcome(ctx, meta, d.Outcome.String())
		if d.Allowed() {
			return
		}
		fields := []observe.Field{observe.F("outcome", d.Outcome.String()), observe.Err(d.Err)}
		if d.Session != nil {
			fields = append(fields, observe.F("user_id", d.Session.UserID), observe.F("role", d.Session.Role.String()))
		}
		ops.Logger().Warn(ctx, "access denied", fields...)
	}
}
