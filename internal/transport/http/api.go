package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	errUnsupported = errors.New("unsupported message type")
	errBadLimit    = errors.New("limit must be a non-negative integer")
)

func errInvalidPayload(kind string) error {
	return errors.New("invalid " + kind + " payload")
}

// APIHandler exposes stateless quiz operations over REST.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

type scoreRequest struct {
	Answers map[string]domain.Answer `json:"answers"`
}

type validateRequest struct {
	QuestionID string        `json:"questionId"`
	Answer     domain.Answer `json:"answer"`
}

type validateResponse struct {
	QuestionID string `json:"questionId"`
	Valid      bool   `json:"valid"`
}

// NewRouter mounts the REST API and the websocket endpoint.
// allowedOrigins empty means any origin.
func NewRouter(service *app.QuizService, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	api := NewAPIHandler(service)
	ws := NewWSHandler(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Logger)
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/quizzes/{quizID}", api.GetQuiz)
		r.Post("/quizzes/{quizID}/score", api.Score)
		r.Post("/quizzes/{quizID}/validate", api.Validate)
		r.Get("/quizzes/{quizID}/results", api.Results)
		r.Get("/quizzes/{quizID}/leaderboard", api.Leaderboard)
	})
	return r
}

// GetQuiz returns a quiz without its answer key.
func (h *APIHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Quiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// Score grades an answer map and returns the report.
func (h *APIHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	report, err := h.service.Score(r.Context(), chi.URLParam(r, "quizID"), req.Answers)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Validate reports whether an answer lets the taker proceed past a question.
func (h *APIHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	valid, err := h.service.Validate(r.Context(), chi.URLParam(r, "quizID"), req.QuestionID, req.Answer)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, validateResponse{QuestionID: req.QuestionID, Valid: valid})
}

func (h *APIHandler) Results(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	results, err := h.service.Results(r.Context(), chi.URLParam(r, "quizID"), limit)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	if results == nil {
		results = []domain.ResultRecord{}
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := h.service.Leaderboard(r.Context(), chi.URLParam(r, "quizID"), limit)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errBadLimit
	}
	return n, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuiz):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, err error) {
	respondJSON(w, code, map[string]string{"error": err.Error()})
}
