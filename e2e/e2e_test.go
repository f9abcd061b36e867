//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"expense-tracker-go/internal/auth"
	"expense-tracker-go/internal/client/remote"
	"expense-tracker-go/internal/client/store"
	clientsync "expense-tracker-go/internal/client/sync"
	"expense-tracker-go/internal/config"
	"expense-tracker-go/internal/db"
	expensesdomain "expense-tracker-go/internal/domain/expenses"
	userdomain "expense-tracker-go/internal/domain/user"
	"expense-tracker-go/internal/model"
	expensesrepo "expense-tracker-go/internal/repository/postgres/expenses"
	userrepo "expense-tracker-go/internal/repository/postgres/user"
	"expense-tracker-go/internal/transport/httpserver"
	"expense-tracker-go/internal/transport/httpserver/handler"
	authhandler "expense-tracker-go/internal/transport/httpserver/handler/auth"
	commonhandler "expense-tracker-go/internal/transport/httpserver/handler/common"
	expenseshandler "expense-tracker-go/internal/transport/httpserver/handler/expenses"
	"expense-tracker-go/pkg/logger"
	"gorm.io/gorm"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	ctx := context.Background()
	log := logger.NewNop()
	cfg := config.Config{
		Env: "test",
		DB:  config.DBConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 2, ConnMaxLifetime: time.Minute},
		Auth: config.AuthConfig{
			JWTSecret:     "e2e-secret",
			TokenTTL:      time.Hour,
			ResetTokenTTL: time.Hour,
		},
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(ctx, dbConn, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	users := userdomain.NewService(userrepo.NewPostgres(dbConn), tokens, cfg.Auth.ResetTokenTTL)
	expenses := expensesdomain.NewService(expensesrepo.NewPostgres(dbConn))
	handlers := handler.New(
		commonhandler.New(log),
		authhandler.New(users, log),
		expenseshandler.New(expenses, log),
	)

	router := httpserver.NewRouter(cfg, handlers, tokens, log)
	return &testEnv{server: httptest.NewServer(router), db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec("TRUNCATE TABLE expenses, users CASCADE").Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func register(t *testing.T, client *http.Client, baseURL, name, email string) model.AuthSession {
	t.Helper()

	resp, body := requestJSON(t, client, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var session model.AuthSession
	if err := json.Unmarshal(body, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session
}

func TestE2EAuthFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL

	resp, body := requestJSON(t, client, http.MethodGet, base+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	session := register(t, client, base, "Ann", "Ann@Example.com")
	if session.User.Email != "ann@example.com" {
		t.Fatalf("expected normalized email, got %q", session.User.Email)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/auth/register", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "secret1",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d: %s", resp.StatusCode, string(body))
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code != "email_taken" {
		t.Fatalf("expected email_taken, got %s", string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"email": "ann@example.com", "password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, base+"/api/auth/me", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var me model.User
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != session.User.ID {
		t.Fatalf("me: expected %s, got %s", session.User.ID, me.ID)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/auth/reset-password", "", map[string]string{"email": "ann@example.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/auth/reset-password", "", map[string]string{"email": "nobody@example.com"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("reset unknown: expected 404, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EExpensesAreScopedPerUser(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL

	ann := register(t, client, base, "Ann", "ann@example.com")
	bob := register(t, client, base, "Bob", "bob@example.com")

	resp, body := requestJSON(t, client, http.MethodPost, base+"/api/expenses", ann.Token, map[string]interface{}{
		"amount": 12.5, "category": "Food", "description": "Lunch", "date": "2024-03-01T12:00:00Z",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var created model.Expense
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode expense: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodPut, base+"/api/expenses/"+created.ID, bob.Token, map[string]interface{}{"amount": 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cross-user update: expected 404, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, base+"/api/expenses/range?startDate=2024-03-01&endDate=2024-03-01", ann.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("range: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var inRange []model.Expense
	if err := json.Unmarshal(body, &inRange); err != nil {
		t.Fatalf("decode range: %v", err)
	}
	if len(inRange) != 1 {
		t.Fatalf("range: expected 1 expense, got %d", len(inRange))
	}

	resp, body = requestJSON(t, client, http.MethodGet, base+"/api/expenses", bob.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var bobs []model.Expense
	if err := json.Unmarshal(body, &bobs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(bobs) != 0 {
		t.Fatalf("expected bob to see no expenses, got %d", len(bobs))
	}

	resp, body = requestJSON(t, client, http.MethodDelete, base+"/api/expenses/"+created.ID, ann.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		resp, body = requestJSON(t, client, method, base+"/api/expenses/not-a-uuid", ann.Token, map[string]interface{}{"amount": 1})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s malformed id: expected 404, got %d: %s", method, resp.StatusCode, string(body))
		}
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/expenses", ann.Token, map[string]interface{}{
		"amount": 0.004, "category": "Food", "date": "2024-03-01",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("sub-cent amount: expected 400, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EOfflineClientSyncsOnReconnect(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	ctx := context.Background()
	httpClient := &http.Client{Timeout: 5 * time.Second}
	session := register(t, httpClient, env.server.URL, "Ann", "ann@example.com")

	local := store.NewLocal(store.NewMemory())
	coordinator := clientsync.NewCoordinator(local, logger.NewNop())
	coordinator.SetRemote(remote.New(env.server.URL).WithToken(session.Token))

	for _, amount := range []float64{10, 20.25} {
		if _, err := coordinator.AddExpense(ctx, model.ExpenseInput{
			Amount: amount, Category: "Food", Date: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatalf("add offline: %v", err)
		}
	}

	report, err := coordinator.SetOnline(ctx, true)
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if report.Status != clientsync.BatchStatusSuccess || report.Summary.Applied != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	snapshot := coordinator.Snapshot()
	if len(snapshot.Confirmed) != 2 || len(snapshot.Pending) != 0 {
		t.Fatalf("expected 2 confirmed and 0 pending, got %d/%d", len(snapshot.Confirmed), len(snapshot.Pending))
	}

	summary, err := remote.New(env.server.URL).WithToken(session.Token).Summary(ctx, "all")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalAmount != 30.25 {
		t.Fatalf("expected total 30.25, got %v", summary.TotalAmount)
	}

	report, err = coordinator.SyncExpenses(ctx)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if report.Summary.Total != 0 || len(coordinator.Expenses()) != 2 {
		t.Fatalf("second sync should be a no-op, got %+v", report)
	}
}
