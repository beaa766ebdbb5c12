package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"postboard/internal/auth"
	"postboard/internal/db"
	"postboard/internal/handlers"
	"postboard/internal/weather"
	"postboard/templates"
)

const cookieName = "session_id"

type testEnv struct {
	router   http.Handler
	store    *db.Store
	sessions auth.SessionStore
	upstream *fakeOpenMeteo
}

// fakeOpenMeteo answers forecast requests and remembers the last query.
type fakeOpenMeteo struct {
	mu        sync.Mutex
	lastQuery url.Values
	fail      bool
	srv       *httptest.Server
}

func (f *fakeOpenMeteo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.lastQuery = r.URL.Query()
	fail := f.fail
	f.mu.Unlock()

	if fail {
		http.Error(w, "upstream down", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"current_weather":{"temperature":21.5,"windspeed":7.2,"weathercode":3}}`))
}

func (f *fakeOpenMeteo) query() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func (f *fakeOpenMeteo) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.InitDatabase(conn); err != nil {
		t.Fatal(err)
	}
	store := db.NewStore(conn)

	tmpl, err := templates.Parse()
	if err != nil {
		t.Fatal(err)
	}

	upstream := &fakeOpenMeteo{}
	upstream.srv = httptest.NewServer(upstream)
	t.Cleanup(upstream.srv.Close)

	sessStore := auth.NewSQLSessionStore(conn)
	router := handlers.NewRouter(handlers.Deps{
		Store: store,
		Sessions: &auth.Sessions{
			Store:      sessStore,
			Users:      store,
			CookieName: cookieName,
			TTL:        time.Hour,
		},
		Templates:   tmpl,
		Weather:     weather.NewClient(upstream.srv.URL, 2*time.Second),
		CORSOrigins: []string{"*"},
	})

	return &testEnv{router: router, store: store, sessions: sessStore, upstream: upstream}
}

// signIn creates a user with a live session and returns both.
func (e *testEnv) signIn(t *testing.T, username string) (int64, *http.Cookie) {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	u, err := e.store.CreateUser(context.Background(), username, hash)
	if err != nil {
		t.Fatal(err)
	}
	sess := auth.NewSession(u.ID, time.Hour)
	if err := e.sessions.Create(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	return u.ID, &http.Cookie{Name: cookieName, Value: sess.ID}
}

func (e *testEnv) post(t *testing.T, authorID int64, content string) int64 {
	t.Helper()
	p, err := e.store.CreatePost(context.Background(), authorID, content)
	if err != nil {
		t.Fatal(err)
	}
	return p.ID
}

// do sends a request through the router. A non-nil form makes it a form POST.
func (e *testEnv) do(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func newRequestWithOrigin(target, origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Origin", origin)
	return req
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
