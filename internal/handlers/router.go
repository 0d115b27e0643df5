package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pivot2ai/jobplans/internal/ai"
	"github.com/pivot2ai/jobplans/internal/buildinfo"
	"github.com/pivot2ai/jobplans/internal/config"
	"github.com/pivot2ai/jobplans/internal/middleware"
	"github.com/pivot2ai/jobplans/internal/models"
	"github.com/pivot2ai/jobplans/internal/plan"
	"github.com/pivot2ai/jobplans/internal/services/payments"
)

// Store is the persistence surface the handlers depend on. Implemented by
// *store.Store; tests substitute fakes.
type Store interface {
	CreatePlan(ctx context.Context, doc plan.Document) (*models.JobPlan, error)
	GetPlan(ctx context.Context, id uint) (*models.JobPlan, error)
	ListPlans(ctx context.Context) ([]models.JobPlan, error)
	UpdatePlan(ctx context.Context, id uint, patch json.RawMessage) (*models.JobPlan, error)
	DeletePlan(ctx context.Context, id uint) error

	CreateUser(ctx context.Context, user *models.UserAuth) error
	GetUser(ctx context.Context, id uint) (*models.UserAuth, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	ConsumeGenerationCredit(ctx context.Context, userID uint, limit int) error
	SetSubscriptionStatus(ctx context.Context, email, status string) error
	RecordGeneration(ctx context.Context, rec *models.GenerationRecord) error
}

// Generator produces candidate job plans from free-text queries.
type Generator interface {
	Generate(ctx context.Context, query string) (*ai.Result, error)
}

// Payments creates checkout sessions and verifies webhook events.
type Payments interface {
	CreateCheckoutSession(ctx context.Context, successURL, cancelURL string) (string, error)
	VerifyWebhook(payload []byte, signature string) (*payments.Event, error)
}

// Mailer delivers contact-form messages.
type Mailer interface {
	Send(name, email, message string) error
}

// Router wraps the mux router and the service dependencies
type Router struct {
	*mux.Router
	cfg      *config.Config
	store    Store
	planner  Generator
	payments Payments
	mailer   Mailer
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(cfg *config.Config, st Store) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		cfg:    cfg,
		store:  st,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/login", r.login).Methods("POST")

	authed := middleware.Auth(cfg.JWTSecret)

	// Job plan routes
	plans := r.PathPrefix("/api/job-plans").Subrouter()
	plans.Handle("/generate", authed(http.HandlerFunc(r.generatePlan))).Methods("POST")
	plans.Handle("", authed(http.HandlerFunc(r.createPlan))).Methods("POST")
	plans.Handle("", authed(http.HandlerFunc(r.listPlans))).Methods("GET")
	plans.Handle("/{id}/edit", authed(http.HandlerFunc(r.editPlan))).Methods("GET")
	plans.HandleFunc("/{id}/export", r.exportPlan).Methods("GET")
	plans.HandleFunc("/{id}", r.getPlan).Methods("GET")
	plans.HandleFunc("/{id}", r.updatePlan).Methods("PATCH")
	plans.HandleFunc("/{id}", r.deletePlan).Methods("DELETE")

	// Payment routes
	pay := r.PathPrefix("/api/payments").Subrouter()
	pay.Handle("/subscribe", authed(http.HandlerFunc(r.subscribe))).Methods("POST")
	pay.HandleFunc("/webhook", r.paymentWebhook).Methods("POST")

	// Contact endpoint
	r.HandleFunc("/api/contact", r.contact).Methods("POST")

	return r
}

// SetPlanner registers the generation adapter.
func (r *Router) SetPlanner(g Generator) {
	r.planner = g
}

// SetPayments registers the payment provider.
func (r *Router) SetPayments(p Payments) {
	r.payments = p
}

// SetMailer registers the contact-form mailer.
func (r *Router) SetMailer(m Mailer) {
	r.mailer = m
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus returns the current status
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "running",
		"buildTime": buildinfo.BuildTime,
		"commit":    buildinfo.CommitHash,
		"startTime": buildinfo.StartTime,
	})
}

// currentUser resolves the authenticated user from the request context.
func (r *Router) currentUser(req *http.Request) (*models.UserAuth, error) {
	claims, ok := middleware.ClaimsFromContext(req.Context())
	if !ok {
		return nil, errUnauthenticated
	}
	id, ok := claimsUserID(claims)
	if !ok {
		return nil, errUnauthenticated
	}
	return r.store.GetUser(req.Context(), id)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
