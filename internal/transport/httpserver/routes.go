package httpserver

import (
	"net/http"
	"time"

	"expense-tracker-go/internal/config"
	"expense-tracker-go/internal/transport/httpserver/handler"
	authmw "expense-tracker-go/internal/transport/httpserver/middleware"
	"expense-tracker-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, tokens authmw.TokenVerifier, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSAllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Post("/auth/register", handlers.Auth.Register)
		r.Post("/auth/login", handlers.Auth.Login)
		r.Post("/auth/reset-password", handlers.Auth.ResetPassword)

		auth := authmw.NewJWTAuth(tokens, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Auth.Me)

			r.Get("/expenses", handlers.Expenses.ListExpenses)
			r.Get("/expenses/range", handlers.Expenses.ListExpensesInRange)
			r.Get("/expenses/summary", handlers.Expenses.Summary)
			r.Get("/expenses/category/{category}", handlers.Expenses.ListExpensesByCategory)
			r.Post("/expenses", handlers.Expenses.CreateExpense)
			r.Put("/expenses/{id}", handlers.Expenses.UpdateExpense)
			r.Delete("/expenses/{id}", handlers.Expenses.DeleteExpense)
		})
	})

	return r
}
