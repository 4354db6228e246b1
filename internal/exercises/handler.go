package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitdice/internal/telemetry/metrics"
	"github.com/2beens/fitdice/internal/telemetry/tracing"
	"github.com/2beens/fitdice/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

const defaultStatsDays = 7

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	CountForDate(ctx context.Context, userID, date string) (int, error)
	DailyStats(ctx context.Context, userID string, days int) ([]DailyStat, error)
}

type Handler struct {
	repo    exercisesRepo
	metrics *metrics.Manager
}

func NewHandler(repo exercisesRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/exercises", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-exercise")
	router.HandleFunc("/api/statistics/daily", handler.HandleDailyStats).Methods("GET", "OPTIONS").Name("daily-statistics")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	if exercise.Name == "" || exercise.Type == "" {
		http.Error(w, "error, exercise name or type empty", http.StatusBadRequest)
		return
	}

	exercise.UserID = userID
	if exercise.Timestamp.IsZero() {
		exercise.Timestamp = time.Now()
	}
	if exercise.Date == "" {
		exercise.Date = exercise.Timestamp.Format(DateLayout)
	}

	addedExercise, err := handler.repo.Add(ctx, exercise)
	if errors.Is(err, ErrUnknownUser) {
		http.Error(w, "error, unknown user", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("failed to add new exercise [%s], [%s]: %s", exercise.Type, exercise.Name, err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	countToday, err := handler.repo.CountForDate(ctx, userID, addedExercise.Date)
	if err != nil {
		// just log the error, no need to return error to the client
		log.Errorf("failed to get exercises count for [%s] [%s]: %s", userID, addedExercise.Date, err)
	}

	addExerciseResponse := AddExerciseResponse{
		Exercise:   *addedExercise,
		CountToday: countToday,
	}

	addedExJson, err := json.Marshal(addExerciseResponse)
	if err != nil {
		log.Errorf("failed to marshal new exercise: %s", err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterExercisesSaved.Inc()

	log.Debugf("new exercise added: %s", addedExJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedExJson, http.StatusCreated)
}

func (handler *Handler) HandleDailyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.dailyStats")
	defer span.End()

	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	days := defaultStatsDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsedDays, err := strconv.Atoi(daysStr)
		if err != nil || parsedDays < 1 {
			http.Error(w, "invalid days param", http.StatusBadRequest)
			return
		}
		days = parsedDays
	}

	stats, err := handler.repo.DailyStats(ctx, userID, days)
	if err != nil {
		log.Errorf("get daily stats for [%s]: %s", userID, err)
		http.Error(w, "failed to get daily statistics", http.StatusInternalServerError)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal daily stats: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}
