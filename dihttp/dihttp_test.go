package dihttp_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/lazyproxy/di"
	"github.com/sghaida/lazyproxy/dihttp"
	"github.com/sghaida/lazyproxy/internal/fixtures"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// tracker counts request state lifecycles across requests.
type tracker struct {
	mu     sync.Mutex
	built  int
	closed int
}

func (t *tracker) counts() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.built, t.closed
}

type requestState struct {
	t *tracker
}

func (s *requestState) Close() error {
	s.t.mu.Lock()
	s.t.closed++
	s.t.mu.Unlock()
	return nil
}

func newRequestState(t *tracker) *requestState {
	t.mu.Lock()
	t.built++
	t.mu.Unlock()
	return &requestState{t: t}
}

func newProvider(t *testing.T, tr *tracker, j *fixtures.Journal, opts ...di.Option) *di.Provider {
	t.Helper()

	c := di.NewCollection()
	require.NoError(t, di.AddInstance(c, tr))
	require.NoError(t, di.AddScoped[*requestState](c, newRequestState))
	require.NoError(t, di.AddLazyScoped[fixtures.Resource](c, j.NewResource("db")))
	p, err := c.Build(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// stateHandler resolves the request state twice and checks both are the same.
func stateHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := dihttp.Resolve[*requestState](r)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		b, _ := dihttp.Resolve[*requestState](r)
		assert.Same(t, a, b)
		w.WriteHeader(http.StatusOK)
	}
}

// fetchHandler uses the lazy resource only when the query asks for it.
func fetchHandler(w http.ResponseWriter, r *http.Request) {
	res, err := dihttp.Resolve[fixtures.Resource](r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if key := r.URL.Query().Get("key"); key != "" {
		v, err := res.Fetch(key)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(v))
	}
}

func do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// ── net/http + chi ───────────────────────────────────────────────────────────

func TestMiddleware_OneScopePerRequest(t *testing.T) {
	t.Parallel()

	var tr tracker
	var j fixtures.Journal
	p := newProvider(t, &tr, &j)

	r := chi.NewRouter()
	r.Use(dihttp.Middleware(p))
	r.Get("/state", stateHandler(t))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(t, r, "/state").Code)
	}
	built, closed := tr.counts()
	assert.Equal(t, 3, built)
	assert.Equal(t, 3, closed, "every request scope is closed")
}

func TestMiddleware_ClosesOnlyUsedLazyTargets(t *testing.T) {
	t.Parallel()

	var tr tracker
	var j fixtures.Journal
	p := newProvider(t, &tr, &j)

	r := chi.NewRouter()
	r.Use(dihttp.Middleware(p))
	r.Get("/fetch", fetchHandler)

	rr := do(t, r, "/fetch")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, j.Entries(), "proxy resolved but never used")

	rr = do(t, r, "/fetch?key=users")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "db/users", rr.Body.String())
	assert.Equal(t, []string{"open:db", "close:db"}, j.Entries())
}

func TestMiddleware_LogsCloseErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	c := di.NewCollection()
	require.NoError(t, di.AddScopedFactory[*failingCloser](c, func(di.Resolver) (*failingCloser, error) {
		return &failingCloser{}, nil
	}))
	p, err := c.Build(di.WithLogger(log))
	require.NoError(t, err)

	h := dihttp.Middleware(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := dihttp.Resolve[*failingCloser](r)
		assert.NoError(t, err)
	}))
	assert.Equal(t, http.StatusOK, do(t, h, "/x").Code)
	assert.Contains(t, buf.String(), "dihttp: close request scope")
	assert.Contains(t, buf.String(), "path=/x")
}

type failingCloser struct{}

func (*failingCloser) Close() error { return assert.AnError }

func TestResolve_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := dihttp.Scope(req)
	assert.False(t, ok)

	_, err := dihttp.Resolve[*requestState](req)
	require.ErrorIs(t, err, dihttp.ErrNoScope)
}

// ── gin ──────────────────────────────────────────────────────────────────────

func TestGin_OneScopePerRequest(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	var tr tracker
	var j fixtures.Journal
	p := newProvider(t, &tr, &j)

	e := gin.New()
	e.Use(dihttp.Gin(p))
	e.GET("/state", func(c *gin.Context) { stateHandler(t)(c.Writer, c.Request) })
	e.GET("/fetch", func(c *gin.Context) { fetchHandler(c.Writer, c.Request) })

	assert.Equal(t, http.StatusOK, do(t, e, "/state").Code)
	assert.Equal(t, http.StatusOK, do(t, e, "/state").Code)
	built, closed := tr.counts()
	assert.Equal(t, 2, built)
	assert.Equal(t, 2, closed)

	rr := do(t, e, "/fetch?key=orders")
	assert.Equal(t, "db/orders", rr.Body.String())
	assert.Equal(t, []string{"open:db", "close:db"}, j.Entries())
}
