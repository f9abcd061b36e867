// Package app wires the client components around one local database.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	stdsync "sync"

	"expense-tracker-go/internal/client/categories"
	"expense-tracker-go/internal/client/connectivity"
	"expense-tracker-go/internal/client/export"
	"expense-tracker-go/internal/client/remote"
	"expense-tracker-go/internal/client/session"
	"expense-tracker-go/internal/client/store"
	"expense-tracker-go/internal/client/sync"
	"expense-tracker-go/internal/config"
	"expense-tracker-go/internal/model"
	"expense-tracker-go/pkg/logger"
)

type App struct {
	Config      config.ClientConfig
	Local       *store.Local
	Sessions    *session.Manager
	Coordinator *sync.Coordinator
	Categories  *categories.Service
	Backups     *export.Manager
	Monitor     *connectivity.Monitor

	kv  store.KV
	log logger.Logger

	mu         stdsync.Mutex
	lastReport *sync.Report
	onReport   func(sync.Report)
}

// Open opens the database at cfg.DataPath, restores the stored session and
// loads the expense collection. No network call is made.
func Open(ctx context.Context, cfg config.ClientConfig, log logger.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DataPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	kv, err := store.OpenSQLite(ctx, cfg.DataPath, log)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, kv, log)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg config.ClientConfig, kv store.KV, log logger.Logger) (*App, error) {
	local := store.NewLocal(kv)
	base := remote.New(cfg.ServerURL, remote.WithTimeout(cfg.RequestTimeout))

	a := &App{
		Config:      cfg,
		Local:       local,
		Sessions:    session.NewManager(local, base, log),
		Coordinator: sync.NewCoordinator(local, log),
		Categories:  categories.NewService(local, log),
		Backups:     export.NewManager(cfg.BackupDir, local, log),
		kv:          kv,
		log:         log,
	}
	a.Monitor = connectivity.NewMonitor(base, a.handleConnectivity, log,
		connectivity.WithInterval(cfg.ConnectivityInterval),
		connectivity.WithTimeout(cfg.ConnectivityTimeout),
	)

	if _, err := a.Sessions.Restore(ctx); err != nil {
		return nil, err
	}
	if client := a.Sessions.Client(); client != nil {
		a.Coordinator.SetRemote(client)
	}
	if err := a.Coordinator.Load(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// OnReport registers a callback for reports of passes started by
// connectivity transitions.
func (a *App) OnReport(fn func(sync.Report)) {
	a.mu.Lock()
	a.onReport = fn
	a.mu.Unlock()
}

// Connect probes the server once; a transition to online validates the
// session and runs a sync pass.
func (a *App) Connect(ctx context.Context) bool {
	return a.Monitor.Check(ctx)
}

// Watch keeps probing until ctx is cancelled.
func (a *App) Watch(ctx context.Context) {
	a.Monitor.Run(ctx)
}

// LastReport returns the report of the latest transition-driven pass.
func (a *App) LastReport() (sync.Report, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastReport == nil {
		return sync.Report{}, false
	}
	return *a.lastReport, true
}

func (a *App) handleConnectivity(ctx context.Context, online bool) {
	if online {
		a.validateSession(ctx)
	}

	report, err := a.Coordinator.SetOnline(ctx, online)
	if err != nil {
		a.log.Error("app.connectivity: sync after reconnect failed", "err", err)
		return
	}
	if report.Skipped {
		return
	}

	a.mu.Lock()
	a.lastReport = &report
	fn := a.onReport
	a.mu.Unlock()

	if fn != nil {
		fn(report)
	}
}

func (a *App) validateSession(ctx context.Context) {
	if a.Sessions.Current() == nil {
		return
	}
	if _, err := a.Sessions.Validate(ctx); err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			a.Coordinator.ClearRemote()
		}
		a.log.Warn("app.session: validation failed", "err", err)
	}
}

func (a *App) Login(ctx context.Context, email, password string) (model.AuthSession, error) {
	s, err := a.Sessions.Login(ctx, email, password)
	if err != nil {
		return model.AuthSession{}, err
	}
	return s, a.attach(ctx)
}

func (a *App) Register(ctx context.Context, name, email, password string) (model.AuthSession, error) {
	s, err := a.Sessions.Register(ctx, name, email, password)
	if err != nil {
		return model.AuthSession{}, err
	}
	return s, a.attach(ctx)
}

// attach hands the new session to the coordinator and pushes the backlog
// accumulated while signed out.
func (a *App) attach(ctx context.Context) error {
	a.Coordinator.SetRemote(a.Sessions.Client())
	if !a.Coordinator.Online() {
		return nil
	}
	_, err := a.Coordinator.SyncExpenses(ctx)
	return err
}

func (a *App) Logout(ctx context.Context) error {
	a.Coordinator.ClearRemote()
	return a.Sessions.Logout(ctx)
}

// RestoreBackup replaces the local collections and reloads the coordinator.
func (a *App) RestoreBackup(ctx context.Context, nameOrPath string) (export.Backup, error) {
	restored, err := a.Backups.Restore(ctx, nameOrPath)
	if err != nil {
		return export.Backup{}, err
	}
	if err := a.Coordinator.Load(ctx); err != nil {
		return export.Backup{}, err
	}
	return restored, nil
}

func (a *App) Close() error {
	return a.kv.Close()
}
