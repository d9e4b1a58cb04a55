package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DJKwan1228/phonebook/internal/phonebook"
	"github.com/DJKwan1228/phonebook/internal/sec"
	"github.com/DJKwan1228/phonebook/internal/storage"
)

// testClient wraps an httptest server with a cookie-jar client that does not
// follow redirects, so each response's Location can be asserted.
type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
	store  *storage.Memory
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	store := storage.NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.DiscardHandler)
	sessions := sec.NewSessionManager(store, []byte("test-secret"), time.Hour)
	auth := sec.NewAuthenticator(store, sessions, logger)
	records := phonebook.NewService(store, logger)

	server := httptest.NewServer(New(logger, false, auth, sessions, records))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:      t,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		store: store,
	}
}

func (tc *testClient) get(path string) *http.Response {
	tc.t.Helper()
	resp, err := tc.client.Get(tc.server.URL + path)
	require.NoError(tc.t, err)
	tc.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// postForm submits a form with the CSRF token read from the client's cookie
// jar (fetching /login first to obtain one if needed).
func (tc *testClient) postForm(path string, form url.Values) *http.Response {
	tc.t.Helper()
	form.Set("_csrf", tc.csrfToken())
	resp, err := tc.client.PostForm(tc.server.URL+path, form)
	require.NoError(tc.t, err)
	tc.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (tc *testClient) csrfToken() string {
	tc.t.Helper()
	base, err := url.Parse(tc.server.URL)
	require.NoError(tc.t, err)
	for range 2 {
		for _, cookie := range tc.client.Jar.Cookies(base) {
			if cookie.Name == "_csrf" {
				return cookie.Value
			}
		}
		tc.get("/login")
	}
	tc.t.Fatal("no CSRF cookie issued")
	return ""
}

func (tc *testClient) location(resp *http.Response) string {
	tc.t.Helper()
	return resp.Header.Get("Location")
}

func TestPublicPages(t *testing.T) {
	t.Parallel()
	tc := newTestClient(t)

	for _, path := range []string{"/", "/login", "/register"} {
		resp := tc.get(path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestUnauthenticatedRedirects(t *testing.T) {
	t.Parallel()
	tc := newTestClient(t)

	user, err := tc.store.CreateUser(t.Context(), "bystander", []byte("hash"))
	require.NoError(t, err)

	gets := []string{"/phonebook", "/create", "/delete", "/cancel", "/excelExport"}
	for _, path := range gets {
		resp := tc.get(path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", tc.location(resp), path)
	}

	resp := tc.postForm("/create", url.Values{"name": {"evil"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", tc.location(resp))

	resp = tc.postForm("/deleteRecord", url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", tc.location(resp))

	// no state was mutated
	record, err := tc.store.GetContact(t.Context(), user.ID)
	require.NoError(t, err)
	assert.True(t, record.IsZero())
}

func TestRegisterLoginRecordLifecycle(t *testing.T) {
	t.Parallel()
	tc := newTestClient(t)

	// register auto-logs-in and redirects to the phonebook
	resp := tc.postForm("/register", url.Values{
		"identifier": {"alice"},
		"password":   {"pw1"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/phonebook", tc.location(resp))

	resp = tc.get("/phonebook")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// duplicate registration reports the identifier as taken
	resp = tc.postForm("/register", url.Values{
		"identifier": {"alice"},
		"password":   {"pw2"},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "already taken")

	// upsert then view
	resp = tc.postForm("/create", url.Values{
		"name":   {"Alice A"},
		"mobile": {"1234567890"},
		"email":  {"alice@x.com"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/phonebook", tc.location(resp))

	resp = tc.get("/phonebook")
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Alice A")
	assert.Contains(t, string(body), "1234567890")
	assert.Contains(t, string(body), "alice@x.com")

	// export
	resp = tc.get("/excelExport")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "phonebook.xlsx")

	// delete clears the record
	resp = tc.postForm("/deleteRecord", url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = tc.get("/phonebook")
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "no contact record")

	// logout, then the phonebook is gated again
	resp = tc.get("/logout")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", tc.location(resp))

	resp = tc.get("/phonebook")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", tc.location(resp))

	// log back in with the original password
	resp = tc.postForm("/login", url.Values{
		"identifier": {"alice"},
		"password":   {"pw1"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/phonebook", tc.location(resp))
}

func TestLoginFailureRedirectsToLogin(t *testing.T) {
	t.Parallel()
	tc := newTestClient(t)

	resp := tc.postForm("/register", url.Values{
		"identifier": {"alice"},
		"password":   {"pw1"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	resp = tc.get("/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	// wrong password and unknown identifier look identical to the client
	for _, form := range []url.Values{
		{"identifier": {"alice"}, "password": {"wrong"}},
		{"identifier": {"nobody"}, "password": {"pw1"}},
	} {
		resp := tc.postForm("/login", form)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/login", tc.location(resp))
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	t.Parallel()
	tc := newTestClient(t)

	resp := tc.get("/logout")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", tc.location(resp))
}

func TestCancelReturnsToPhonebook(t *testing.T) {
	t.Parallel()
	tc := newTestClient(t)

	resp := tc.postForm("/register", url.Values{
		"identifier": {"alice"},
		"password":   {"pw1"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = tc.get("/cancel")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/phonebook", tc.location(resp))
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()
	tc := newTestClient(t)

	resp := tc.get("/static/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = tc.get("/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "User-agent"))
}
