package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"expense-tracker-go/internal/client/store"
	"expense-tracker-go/internal/client/sync"
	"expense-tracker-go/internal/config"
	"expense-tracker-go/internal/model"
	"expense-tracker-go/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       stdsync.Mutex
	expenses []model.Expense
	seq      int
	down     bool
	expired  bool
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		down := f.down
		f.mu.Unlock()
		if down {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, model.AuthSession{Token: "tok", User: model.User{ID: "u-1", Name: "Ann", Email: "ann@example.com"}})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, model.User{ID: "u-1", Name: "Ann", Email: "ann@example.com"})
	})
	mux.HandleFunc("GET /api/expenses", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.expenses)
	})
	mux.HandleFunc("POST /api/expenses", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		var in model.ExpenseInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.seq++
		created := model.Expense{ID: fmt.Sprintf("srv-%d", f.seq), Amount: in.Amount, Category: in.Category, Description: in.Description, Date: in.Date, UserID: "u-1"}
		f.expenses = append(f.expenses, created)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, created)
	})
	return mux
}

func (f *fakeAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	expired := f.expired
	f.mu.Unlock()
	if expired || r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"invalid_token","message":"token expired"}}`))
		return false
	}
	return true
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.expenses)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestApp(t *testing.T, api *fakeAPI, kv store.KV) *App {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	cfg := config.ClientConfig{
		ServerURL:            srv.URL,
		BackupDir:            filepath.Join(t.TempDir(), "backups"),
		RequestTimeout:       time.Second,
		ConnectivityInterval: time.Second,
		ConnectivityTimeout:  time.Second,
	}
	a, err := build(context.Background(), cfg, kv, logger.NewNop())
	require.NoError(t, err)
	return a
}

func expenseInput(amount float64) model.ExpenseInput {
	return model.ExpenseInput{Amount: amount, Category: "Food", Description: "lunch", Date: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestOfflineBacklogSyncsAfterLogin(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	a := newTestApp(t, api, store.NewMemory())

	_, err := a.Coordinator.AddExpense(ctx, expenseInput(5))
	require.NoError(t, err)

	require.True(t, a.Connect(ctx))
	require.True(t, a.Coordinator.Online())
	_, ok := a.LastReport()
	require.False(t, ok, "signed out: no pass ran")
	require.Zero(t, api.count())

	_, err = a.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	require.Equal(t, 1, api.count())
	expenses := a.Coordinator.Expenses()
	require.Len(t, expenses, 1)
	require.True(t, expenses[0].IsSynced)
}

func TestReconnectPushesPending(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{down: true}
	kv := store.NewMemory()
	a := newTestApp(t, api, kv)

	_, err := a.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.False(t, a.Connect(ctx))

	_, err = a.Coordinator.AddExpense(ctx, expenseInput(5))
	require.NoError(t, err)
	_, err = a.Coordinator.AddExpense(ctx, expenseInput(7))
	require.NoError(t, err)
	require.Zero(t, api.count())

	var reports []sync.Report
	a.OnReport(func(r sync.Report) { reports = append(reports, r) })

	api.mu.Lock()
	api.down = false
	api.mu.Unlock()

	require.True(t, a.Connect(ctx))
	require.Len(t, reports, 1)
	require.Equal(t, sync.BatchStatusSuccess, reports[0].Status)
	require.Equal(t, 2, reports[0].Summary.Applied)
	require.Equal(t, 2, api.count())

	reopened := newTestApp(t, api, kv)
	require.Len(t, reopened.Coordinator.Snapshot().Confirmed, 2)
	require.NotNil(t, reopened.Sessions.Current())
}

func TestExpiredSessionIsClearedOnReconnect(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	a := newTestApp(t, api, store.NewMemory())

	_, err := a.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	api.mu.Lock()
	api.expired = true
	api.mu.Unlock()

	require.True(t, a.Connect(ctx))
	require.Nil(t, a.Sessions.Current())
	require.False(t, a.Coordinator.Authenticated())

	_, err = a.Coordinator.AddExpense(ctx, expenseInput(3))
	require.NoError(t, err)
	require.Zero(t, api.count())
}

func TestRestoreBackupReloadsCoordinator(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, &fakeAPI{}, store.NewMemory())

	_, err := a.Coordinator.AddExpense(ctx, expenseInput(5))
	require.NoError(t, err)
	path, err := a.Backups.Create(ctx)
	require.NoError(t, err)

	_, err = a.Coordinator.AddExpense(ctx, expenseInput(9))
	require.NoError(t, err)
	require.Len(t, a.Coordinator.Expenses(), 2)

	_, err = a.RestoreBackup(ctx, path)
	require.NoError(t, err)
	require.Len(t, a.Coordinator.Expenses(), 1)
}

func TestLogoutDetachesRemote(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, &fakeAPI{}, store.NewMemory())

	_, err := a.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.True(t, a.Coordinator.Authenticated())

	require.NoError(t, a.Logout(ctx))
	require.False(t, a.Coordinator.Authenticated())
	require.Nil(t, a.Sessions.Current())
}
