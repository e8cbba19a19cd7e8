package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jonwraymond/todogate/auth"
	"github.com/jonwraymond/todogate/resilience"
	"github.com/jonwraymond/todogate/store"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type storedUser struct {
	user   store.User
	digest string
}

// memStore is an in-memory UserStore, TodoStore and auth.CredentialStore.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  []*storedUser
	todos  []*store.Todo
	err    error
}

func newMemStore() *memStore { return &memStore{nextID: 1} }

func (m *memStore) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) findUser(id int64) (int, *storedUser) {
	for i, u := range m.users {
		if u.user.ID == id {
			return i, u
		}
	}
	return -1, nil
}

func (m *memStore) findTodo(id int64) (int, *store.Todo) {
	for i, t := range m.todos {
		if t.ID == id {
			return i, t
		}
	}
	return -1, nil
}

func (m *memStore) FindCredentialByEmail(_ context.Context, email string) (*auth.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.user.Email == email {
			return &auth.CredentialRecord{ID: u.user.ID, Name: u.user.Name, Email: email, PasswordHash: u.digest, Role: u.user.Role}, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *memStore) CreateUser(_ context.Context, in store.NewUser) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.user.Email == in.Email {
			return nil, store.ErrEmailTaken
		}
	}
	now := time.Now()
	u := &storedUser{
		user:   store.User{ID: m.id(), Name: in.Name, Email: in.Email, Role: in.Role, Age: in.Age, CreatedAt: now, UpdatedAt: now},
		digest: in.PasswordHash,
	}
	m.users = append(m.users, u)
	out := u.user
	return &out, nil
}

func (m *memStore) ListUsers(context.Context) ([]*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*store.User, 0, len(m.users))
	for _, u := range m.users {
		cp := u.user
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) GetUser(_ context.Context, id int64) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, u := m.findUser(id); u != nil {
		out := u.user
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateUser(_ context.Context, id int64, name, email string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, u := m.findUser(id)
	if u == nil {
		return nil, store.ErrNotFound
	}
	u.user.Name, u.user.Email = name, email
	out := u.user
	return &out, nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, u := m.findUser(id)
	if u == nil {
		return nil, store.ErrNotFound
	}
	m.users = slices.Delete(m.users, i, i+1)
	m.todos = slices.DeleteFunc(m.todos, func(t *store.Todo) bool { return t.UserID == id })
	out := u.user
	return &out, nil
}

func (m *memStore) CreateTodo(_ context.Context, in store.NewTodo) (*store.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, u := m.findUser(in.UserID); u == nil {
		return nil, store.ErrInvalidReference
	}
	now := time.Now()
	t := &store.Todo{ID: m.id(), UserID: in.UserID, Title: in.Title, Description: in.Description, DueDate: in.DueDate, CreatedAt: now, UpdatedAt: now}
	m.todos = append(m.todos, t)
	out := *t
	return &out, nil
}

func (m *memStore) ListTodos(_ context.Context, f store.TodoFilter) ([]*store.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Todo
	for _, t := range m.todos {
		if f.UserID == 0 || t.UserID == f.UserID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) GetTodo(_ context.Context, id int64) (*store.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, t := m.findTodo(id); t != nil {
		out := *t
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateTodo(_ context.Context, id int64, u store.TodoUpdate) (*store.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, t := m.findTodo(id)
	if t == nil {
		return nil, store.ErrNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	out := *t
	return &out, nil
}

func (m *memStore) DeleteTodo(_ context.Context, id int64) (*store.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, t := m.findTodo(id)
	if t == nil {
		return nil, store.ErrNotFound
	}
	m.todos = slices.Delete(m.todos, i, i+1)
	return t, nil
}

type harness struct {
	t       *testing.T
	clock   *clock
	store   *memStore
	codec   *auth.TokenCodec
	hasher  *auth.BcryptHasher
	handler http.Handler
}

type harnessOption func(*harness, *Deps)

func withLimiter(l *resilience.KeyedRateLimiter) harnessOption {
	return func(_ *harness, d *Deps) { d.LoginLimiter = l }
}

// newHarness serves the API over an in-memory store seeded with
// admin@example.com (id 1) and user@example.com (id 2).
func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: testSecret, Issuer: "todogate-test", Now: clk.Now})
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	hasher, err := auth.NewBcryptHasher(auth.HasherConfig{Cost: bcrypt.MinCost, Workers: 2})
	if err != nil {
		t.Fatalf("NewBcryptHasher() error = %v", err)
	}

	h := &harness{t: t, clock: clk, store: newMemStore(), codec: codec, hasher: hasher}
	h.seed("Admin", "admin@example.com", "admin-pass", auth.RoleAdmin)
	h.seed("User", "user@example.com", "user-pass", auth.RoleUser)

	deps := Deps{
		Authenticator: auth.NewAuthenticator(h.store, hasher, codec, auth.AuthenticatorConfig{}),
		Guard:         auth.NewGuard(codec),
		Hasher:        hasher,
		Users:         h.store,
		Todos:         h.store,
	}
	for _, opt := range opts {
		opt(h, &deps)
	}
	h.handler = New(Config{RequestTimeout: 5 * time.Second}, deps).Handler()
	return h
}

func (h *harness) seed(name, email, password string, role auth.Role) int64 {
	h.t.Helper()
	digest, err := h.hasher.Hash(context.Background(), password)
	if err != nil {
		h.t.Fatalf("Hash() error = %v", err)
	}
	u, err := h.store.CreateUser(context.Background(), store.NewUser{Name: name, Email: email, PasswordHash: digest, Role: role})
	if err != nil {
		h.t.Fatalf("CreateUser() error = %v", err)
	}
	return u.ID
}

type response struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

func (r response) message() string {
	s, _ := r.Body["message"].(string)
	return s
}

func (h *harness) do(method, path, token string, body any) response {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:5555"
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	res := response{Code: rec.Code, Header: rec.Header()}
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		if err := json.NewDecoder(rec.Body).Decode(&res.Body); err != nil {
			h.t.Fatalf("%s %s: decode body: %v", method, path, err)
		}
	}
	return res
}

func (h *harness) login(email, password string) string {
	h.t.Helper()
	res := h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	if res.Code != http.StatusOK {
		h.t.Fatalf("login %s = %d %v", email, res.Code, res.Body)
	}
	token, _ := res.Body["token"].(string)
	if token == "" {
		h.t.Fatalf("login %s returned no token", email)
	}
	return token
}
