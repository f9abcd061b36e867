package app

import (
	"context"
	"net/http"

	"expense-tracker-go/internal/auth"
	"expense-tracker-go/internal/config"
	"expense-tracker-go/internal/db"
	expensesdomain "expense-tracker-go/internal/domain/expenses"
	userdomain "expense-tracker-go/internal/domain/user"
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

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}

	closeOnErr := func(err error) (*App, error) {
		if sqlDB, dbErr := dbConn.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	if err := db.Migrate(ctx, dbConn, log); err != nil {
		return closeOnErr(err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return closeOnErr(err)
	}

	users := userdomain.NewService(userrepo.NewPostgres(dbConn), tokens, cfg.Auth.ResetTokenTTL)
	expenses := expensesdomain.NewService(expensesrepo.NewPostgres(dbConn))

	handlers := handler.New(
		commonhandler.New(log),
		authhandler.New(users, log),
		expenseshandler.New(expenses, log),
	)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, tokens, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
