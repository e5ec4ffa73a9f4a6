package dashboard

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"honorbot/models"
	"honorbot/service"
)

// Server exposes the operator dashboard: read-only standings, the admin
// operations and the Prometheus metrics endpoint. It is meant to be bound
// to a private interface; the token check is a second line, not the first.
type Server struct {
	addr  string
	token string

	leaderboardService service.LeaderboardService
	adminService       service.AdminService

	httpServer *http.Server
}

func NewServer(
	addr, token string,
	leaderboardService service.LeaderboardService,
	adminService service.AdminService,
) *Server {
	return &Server{
		addr:               addr,
		token:              token,
		leaderboardService: leaderboardService,
		adminService:       adminService,
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Dashboard listening on %s", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Dashboard server error: %v", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/users", s.handleListUsers)
		r.Get("/users/{id}", s.handleGetUser)
		r.Put("/users/{id}/balance", s.handleSetBalance)
		r.Post("/users/{id}/streak/reset", s.handleResetStreak)
		r.Get("/backup", s.handleExport)
		r.Post("/backup", s.handleImport)
		r.Post("/snapshot", s.handleSnapshot)
	})

	return r
}

// requireToken guards the API routes with a bearer token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			writeError(w, http.StatusForbidden, "dashboard token not configured")
			return
		}
		presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(s.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "n must be between 1 and 100")
			return
		}
		n = parsed
	}

	if r.URL.Query().Get("scope") == "monthly" {
		standings, err := s.leaderboardService.MonthlyTopN(r.Context(), n, time.Now().UTC())
		if err != nil {
			log.Errorf("Dashboard monthly leaderboard failed: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load standings")
			return
		}
		writeJSON(w, http.StatusOK, standings)
		return
	}

	accounts, err := s.leaderboardService.TopN(r.Context(), n)
	if err != nil {
		log.Errorf("Dashboard leaderboard failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load standings")
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	records, err := s.adminService.ExportAll(r.Context())
	if err != nil {
		log.Errorf("Dashboard user list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	records, err := s.adminService.ExportAll(r.Context())
	if err != nil {
		log.Errorf("Dashboard lookup for user %d failed: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	for _, record := range records {
		if record.UserID == userID {
			writeJSON(w, http.StatusOK, record)
			return
		}
	}
	writeError(w, http.StatusNotFound, "no such account")
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var body struct {
		Value int64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.adminService.SetBalance(r.Context(), userID, body.Value)
	if err != nil {
		log.Errorf("Dashboard set balance for user %d failed: %v", userID, err)
		writeError(w, http.StatusUnprocessableEntity, "failed to set balance")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleResetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := s.adminService.ResetStreak(r.Context(), userID); err != nil {
		log.Errorf("Dashboard streak reset for user %d failed: %v", userID, err)
		writeError(w, http.StatusUnprocessableEntity, "failed to reset streak")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, err := s.adminService.ExportAll(r.Context())
	if err != nil {
		log.Errorf("Dashboard export failed: %v", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var records []models.AccountRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup payload")
		return
	}

	report, err := s.adminService.ImportAll(r.Context(), records)
	if err != nil {
		log.Errorf("Dashboard import failed: %v", err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	affected, err := s.adminService.SeedMonthlySnapshots(r.Context(), time.Now().UTC())
	if err != nil {
		log.Errorf("Dashboard snapshot seed failed: %v", err)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode dashboard response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
