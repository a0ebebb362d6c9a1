package routes

import (
	"net/http"

	"kycdesk/handlers"
	"kycdesk/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes mounts the API under /api. Every route resolves the session;
// role checks are applied per route.
func SetupRoutes(h *handlers.Handlers, resolver middleware.IdentityResolver, limiter *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(limiter.Limit)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.SessionAuth(resolver))

	// Public routes
	api.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	api.HandleFunc("/check-auth", h.CheckAuth).Methods(http.MethodGet)
	api.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	// User routes
	api.Handle("/deposit", userOnly(h.Deposit)).Methods(http.MethodPost)
	api.Handle("/withdraw", userOnly(h.Withdraw)).Methods(http.MethodPost)
	api.Handle("/transactions", middleware.RequireAuthenticated(http.HandlerFunc(h.GetTransactions))).Methods(http.MethodGet)

	// Admin routes
	api.Handle("/users", adminOnly(h.GetUsers)).Methods(http.MethodGet)
	api.Handle("/users/{id}/approve", adminOnly(h.ApproveUser)).Methods(http.MethodPost)
	api.Handle("/users/{id}/reject", adminOnly(h.RejectUser)).Methods(http.MethodPost)
	api.Handle("/users/{id}", adminOnly(h.DeleteUser)).Methods(http.MethodDelete)
	api.Handle("/transactions/{id}/approve", adminOnly(h.ApproveTransaction)).Methods(http.MethodPost)
	api.Handle("/transactions/{id}/reject", adminOnly(h.RejectTransaction)).Methods(http.MethodPost)

	return r
}

func adminOnly(fn http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(fn)
}

func userOnly(fn http.HandlerFunc) http.Handler {
	return middleware.RequireUser(fn)
}
