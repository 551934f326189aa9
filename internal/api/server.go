// Package api exposes the HTTP surface: auth, chat, bill splitting, and the
// goals/budgets/transactions planning routes.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/budgetly/budgetly/internal/auth"
	"github.com/budgetly/budgetly/internal/chat"
	"github.com/budgetly/budgetly/internal/config"
	"github.com/budgetly/budgetly/internal/handoff"
	"github.com/budgetly/budgetly/internal/metrics"
	"github.com/budgetly/budgetly/internal/middleware"
	"github.com/budgetly/budgetly/internal/split"
	"github.com/budgetly/budgetly/internal/storage"
)

// Dependencies are the collaborators the server wires into its handlers.
type Dependencies struct {
	Store         storage.Store
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Responder     chat.Responder
	Analyzer      chat.Analyzer
	Handoff       *handoff.Store
	Metrics       *metrics.Metrics

	// Submitter, when set, delivers finished splits to a remote sink.
	// When nil the split is persisted through the store instead.
	Submitter split.Submitter
}

type Server struct {
	router *chi.Mux
	cfg    config.Config
	deps   Dependencies

	sessions *sessionManager
	splits   *splitManager
}

func NewServer(cfg config.Config, deps Dependencies) *Server {
	s := &Server{
		cfg:      cfg,
		deps:     deps,
		sessions: newSessionManager(),
		splits:   newSplitManager(),
	}

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestLogger)
	router.Use(s.countRequests)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", s.health)
	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.JWT))
			r.Get("/auth/me", s.currentUser)

			r.Route("/goals", func(r chi.Router) {
				r.Post("/", s.createGoal)
				r.Get("/", s.listGoals)
				r.Get("/{id}", s.getGoal)
				r.Put("/{id}", s.updateGoal)
				r.Delete("/{id}", s.deleteGoal)
			})
			r.Route("/budgets", func(r chi.Router) {
				r.Post("/", s.createBudget)
				r.Get("/", s.listBudgets)
				r.Put("/{id}", s.updateBudget)
				r.Delete("/{id}", s.deleteBudget)
			})
			r.Get("/transactions", s.listTransactions)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(deps.JWT))

			r.Route("/chat", func(r chi.Router) {
				r.Post("/message", s.chatMessage)
				r.Post("/receipt", s.chatReceipt)
				r.Get("/sessions", s.listChatSessions)
				r.Get("/sessions/{id}", s.getChatSession)
				r.Delete("/sessions/{id}", s.closeChatSession)
			})

			r.Route("/split-bill", func(r chi.Router) {
				r.Get("/{key}", s.openSplit)
				r.Post("/split_item", s.splitItem)
				r.Post("/submit", s.submitSplit)
			})
		})
	})

	s.router = router
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// countRequests feeds the per-route request counter. Route patterns come
// from chi so the label set stays bounded.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		rec := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(rec, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.deps.Metrics.HTTPRequests.WithLabelValues(
			r.Method, route, strconv.Itoa(rec.Status()),
		).Inc()
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
