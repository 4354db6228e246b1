package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fitdice/internal/telemetry/tracing"
	"github.com/2beens/fitdice/pkg"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	leaderboardLimit    = 100
	leaderboardCacheTTL = 60 // seconds
	cacheSize           = 512 * 1024
)

var leaderboardCacheKey = []byte("leaderboard")

type usersRepo interface {
	Get(ctx context.Context, id string) (*User, error)
	Search(ctx context.Context, query string) ([]User, error)
	Leaderboard(ctx context.Context, limit int) ([]User, error)
}

type Handler struct {
	repo  usersRepo
	cache *freecache.Cache
}

func NewHandler(repo usersRepo) *Handler {
	return &Handler{
		repo:  repo,
		cache: freecache.NewCache(cacheSize),
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	usersRouter := router.PathPrefix("/api/users").Subrouter()
	// order matters, search and leaderboard would otherwise match {id}
	usersRouter.HandleFunc("/search", handler.HandleSearch).Methods("GET", "OPTIONS").Name("search-users")
	usersRouter.HandleFunc("/leaderboard", handler.HandleLeaderboard).Methods("GET", "OPTIONS").Name("leaderboard")
	usersRouter.HandleFunc("/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-user")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get user %s: %s", id, err)
		http.Error(w, "failed to get user", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("failed to marshal user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusOK)
}

func (handler *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.search")
	defer span.End()

	query := r.URL.Query().Get("query")

	found, err := handler.repo.Search(ctx, query)
	if err != nil {
		log.Errorf("search users [%s]: %s", query, err)
		http.Error(w, "failed to search users", http.StatusInternalServerError)
		return
	}

	foundJson, err := json.Marshal(found)
	if err != nil {
		log.Errorf("failed to marshal search results: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, foundJson, http.StatusOK)
}

func (handler *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.leaderboard")
	defer span.End()

	if cached, err := handler.cache.Get(leaderboardCacheKey); err == nil {
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, cached, http.StatusOK)
		return
	}

	leaderboard, err := handler.repo.Leaderboard(ctx, leaderboardLimit)
	if err != nil {
		log.Errorf("get leaderboard: %s", err)
		http.Error(w, "failed to get leaderboard", http.StatusInternalServerError)
		return
	}

	leaderboardJson, err := json.Marshal(leaderboard)
	if err != nil {
		log.Errorf("failed to marshal leaderboard: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(leaderboardCacheKey, leaderboardJson, leaderboardCacheTTL); err != nil {
		log.Warnf("failed to cache leaderboard: %s", err)
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, leaderboardJson, http.StatusOK)
}
