package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Garsondee/clout-chase/internal/leaderboard"
)

const maxBodyBytes = 1 << 20

// Server exposes the leaderboard service over HTTP.
type Server struct {
	svc          *leaderboard.Service
	assetsDir    string
	errorHandler *ErrorHandler
	logger       *log.Logger
	startTime    time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the default stdout logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithAssets serves static files from dir for any unmatched GET.
func WithAssets(dir string) Option { return func(s *Server) { s.assetsDir = dir } }

// NewServer creates a new API server.
func NewServer(svc *leaderboard.Service, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags),
		startTime: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	s.errorHandler = NewErrorHandler(s.logger)
	return s
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/test", s.handleTest)

	r.Route("/api", func(r chi.Router) {
		r.Post("/user", s.handleUser)
		r.Post("/score", s.handleScore)
		r.Get("/leaderboard", s.handleLeaderboard)
	})

	if s.assetsDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.assetsDir)))
	}
	return r
}

type userRequest struct {
	Username string `json:"username"`
}

type scoreRequest struct {
	Username string `json:"username"`
	RewardID string `json:"rewardId"`
	// Older clients send the reward as memeId.
	MemeID string `json:"memeId,omitempty"`
}

func (s *Server) handleTest(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Server is running!"})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !s.decode(w, r, &req) {
		return
	}
	rec, err := s.svc.EnsureUser(r.Context(), req.Username)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !s.decode(w, r, &req) {
		return
	}
	reward := req.RewardID
	if reward == "" {
		reward = req.MemeID
	}
	rec, err := s.svc.RecordWin(r.Context(), req.Username, reward)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Leaderboard(r.Context(), leaderboard.DefaultLimit)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

// decode reads a JSON body. On failure it writes a 400 and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			s.errorHandler.HandleValidationError(w, r, "body", "request body is empty")
			return false
		}
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, leaderboard.ErrNotFound):
		s.errorHandler.HandleNotFound(w, r, "User not found")
	case errors.Is(err, leaderboard.ErrInvalidUsername):
		s.errorHandler.HandleValidationError(w, r, "username", err.Error())
	case errors.Is(err, leaderboard.ErrInvalidReward):
		s.errorHandler.HandleValidationError(w, r, "rewardId", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.errorHandler.HandleError(w, r, ErrTypeTimeout, err, http.StatusGatewayTimeout)
	default:
		s.errorHandler.HandleError(w, r, ErrTypeInternal, err, http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("encode_failed err=%v", err)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Printf("request method=%s path=%s status=%d bytes=%d duration=%s request_id=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
