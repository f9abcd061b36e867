package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"expense-tracker-go/internal/client/remote"
	"expense-tracker-go/internal/client/store"
	"expense-tracker-go/internal/model"
	"expense-tracker-go/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	meStatus atomic.Int32
	meName   atomic.Value
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{}
	fs.meStatus.Store(http.StatusOK)
	fs.meName.Store("Ann")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"invalid_credentials","message":"invalid email or password"}}`))
			return
		}
		writeJSON(w, http.StatusOK, model.AuthSession{Token: "tok-1", User: model.User{ID: "u-1", Name: "Ann", Email: body.Email}})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, model.AuthSession{Token: "tok-2", User: model.User{ID: "u-2", Name: "Bob", Email: "bob@example.com"}})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		status := int(fs.meStatus.Load())
		if status != http.StatusOK || r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"invalid_token","message":"token expired"}}`))
			return
		}
		writeJSON(w, http.StatusOK, model.User{ID: "u-1", Name: fs.meName.Load().(string), Email: "ann@example.com"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fs, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginPersistsSession(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeServer(t)
	local := store.NewLocal(store.NewMemory())
	m := NewManager(local, remote.New(srv.URL), logger.NewNop())

	require.Nil(t, m.Client())

	session, err := m.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "tok-1", session.Token)

	stored, err := local.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, &session, stored)

	client := m.Client()
	require.NotNil(t, client)
	require.Equal(t, "tok-1", client.Token())
}

func TestLoginFailureKeepsSignedOut(t *testing.T) {
	_, srv := newFakeServer(t)
	m := NewManager(store.NewLocal(store.NewMemory()), remote.New(srv.URL), logger.NewNop())

	_, err := m.Login(context.Background(), "ann@example.com", "wrong")
	require.ErrorIs(t, err, remote.ErrUnauthorized)
	require.Nil(t, m.Current())
}

func TestRegisterAndRestore(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeServer(t)
	local := store.NewLocal(store.NewMemory())

	first := NewManager(local, remote.New(srv.URL), logger.NewNop())
	_, err := first.Register(ctx, "Bob", "bob@example.com", "secret1")
	require.NoError(t, err)

	second := NewManager(local, remote.New(srv.URL), logger.NewNop())
	restored, err := second.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	require.Equal(t, "u-2", restored.User.ID)
	require.Equal(t, "tok-2", second.Client().Token())
}

func TestValidateRefreshesUser(t *testing.T) {
	ctx := context.Background()
	fs, srv := newFakeServer(t)
	local := store.NewLocal(store.NewMemory())
	m := NewManager(local, remote.New(srv.URL), logger.NewNop())
	_, err := m.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	fs.meName.Store("Ann Lee")
	user, err := m.Validate(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ann Lee", user.Name)

	stored, err := local.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ann Lee", stored.User.Name)
}

func TestValidateExpiredTokenClearsSession(t *testing.T) {
	ctx := context.Background()
	fs, srv := newFakeServer(t)
	local := store.NewLocal(store.NewMemory())
	m := NewManager(local, remote.New(srv.URL), logger.NewNop())
	_, err := m.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	fs.meStatus.Store(http.StatusUnauthorized)
	_, err = m.Validate(ctx)
	require.ErrorIs(t, err, ErrSessionExpired)

	require.Nil(t, m.Current())
	stored, err := local.Session(ctx)
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestValidateOfflineKeepsSession(t *testing.T) {
	ctx := context.Background()
	local := store.NewLocal(store.NewMemory())
	require.NoError(t, local.SaveSession(ctx, model.AuthSession{Token: "tok-1", User: model.User{ID: "u-1", Name: "Ann"}}))

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	m := NewManager(local, remote.New(srv.URL), logger.NewNop())
	_, err := m.Restore(ctx)
	require.NoError(t, err)

	user, err := m.Validate(ctx)
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.NotNil(t, m.Current())
}

func TestValidateWithoutSession(t *testing.T) {
	m := NewManager(store.NewLocal(store.NewMemory()), remote.New("http://127.0.0.1:0"), logger.NewNop())
	_, err := m.Validate(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeServer(t)
	local := store.NewLocal(store.NewMemory())
	m := NewManager(local, remote.New(srv.URL), logger.NewNop())
	_, err := m.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	require.Nil(t, m.Client())

	stored, err := local.Session(ctx)
	require.NoError(t, err)
	require.Nil(t, stored)
}
