package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader map[uuid.UUID]*users.User

func (f fakeLoader) GetUser(_ context.Context, id uuid.UUID) (*users.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

// newSessionServer exposes a login endpoint that stores the given session value,
// and a protected endpoint wrapped by the middleware under test.
func newSessionServer(t *testing.T, loader UserLoader, protect func(http.Handler) http.Handler) (*http.Client, string) {
	t.Helper()
	sm := scs.New()

	mux := http.NewServeMux()
	mux.HandleFunc("/login-as", func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), SessionUserKey, r.URL.Query().Get("id"))
	})
	mux.Handle("/protected", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetAuthenticatedUser(r.Context()).Username))
	})))

	srv := httptest.NewServer(sm.LoadAndSave(LoadAuthenticatedUser(sm, loader)(mux)))
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	jar := newJar()
	client.Jar = jar
	return client, srv.URL
}

func TestRequireAuth(t *testing.T) {
	fan := &users.User{ID: uuid.New(), Username: "fan"}
	client, url := newSessionServer(t, fakeLoader{fan.ID: fan}, RequireAuth)

	resp, err := client.Get(url + "/protected")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = client.Get(url + "/login-as?id=" + fan.ID.String())
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(url + "/protected")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fan", readBody(t, resp))
}

func TestRequireAPIAuth_UnknownUser(t *testing.T) {
	client, url := newSessionServer(t, fakeLoader{}, RequireAPIAuth)

	resp, err := client.Get(url + "/login-as?id=" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(url + "/protected")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"authentication required"}`, readBody(t, resp))
}

func TestGetAuthenticatedUser(t *testing.T) {
	assert.Nil(t, GetAuthenticatedUser(context.Background()))

	u := &users.User{ID: users.GuestID}
	assert.Same(t, u, GetAuthenticatedUser(WithUser(context.Background(), u)))
}

func TestLoadSessionUser(t *testing.T) {
	fan := &users.User{ID: uuid.New(), Username: "fan"}
	sm := scs.New()

	login := httptest.NewServer(sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), SessionUserKey, fan.ID.String())
	})))
	t.Cleanup(login.Close)

	resp, err := http.Get(login.URL)
	require.NoError(t, err)
	resp.Body.Close()
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	var got *users.User
	h := LoadSessionUser(sm, fakeLoader{fan.ID: fan})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetAuthenticatedUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "fan", got.Username)

	got = nil
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Nil(t, got)
}
