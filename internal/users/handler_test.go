package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlerAndRouter(t *testing.T) (*repoMock, *mux.Router) {
	t.Helper()
	repo := NewRepoMock()
	handler := NewHandler(repo)
	router := mux.NewRouter()
	handler.SetupRoutes(router)
	return repo, router
}

func addTestAccount(t *testing.T, repo *repoMock, id, username string, totalExercises int) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), Account{
		User: User{
			ID:              id,
			Username:        username,
			Email:           gofakeit.Email(),
			TotalExercises:  totalExercises,
			WeeklyExercises: totalExercises / 10,
			Streak:          gofakeit.Number(0, 30),
		},
		PasswordHash: gofakeit.UUID(),
	}))
}

func TestHandler_HandleGet(t *testing.T) {
	repo, router := newTestHandlerAndRouter(t)
	addTestAccount(t, repo, "u1", "roller", 42)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/users/u1", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var user User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "roller", user.Username)
	assert.Equal(t, 42, user.TotalExercises)
}

func TestHandler_HandleGet_NotFound(t *testing.T) {
	_, router := newTestHandlerAndRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/users/nope", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleSearch(t *testing.T) {
	repo, router := newTestHandlerAndRouter(t)
	addTestAccount(t, repo, "u1", "anna", 10)
	addTestAccount(t, repo, "u2", "Annabelle", 20)
	addTestAccount(t, repo, "u3", "bob", 30)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/users/search?query=ann", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var found []User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 2)
	assert.Equal(t, "Annabelle", found[0].Username)
	assert.Equal(t, "anna", found[1].Username)
}

func TestHandler_HandleSearch_NoMatch(t *testing.T) {
	repo, router := newTestHandlerAndRouter(t)
	addTestAccount(t, repo, "u1", "anna", 10)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/users/search?query=zzz", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	// empty list, not an error
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_HandleLeaderboard(t *testing.T) {
	repo, router := newTestHandlerAndRouter(t)
	for i := 1; i <= 5; i++ {
		addTestAccount(t, repo, fmt.Sprintf("u%d", i), fmt.Sprintf("user-%d", i), i*37)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/users/leaderboard", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var leaderboard []User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leaderboard))
	require.Len(t, leaderboard, 5)
	for i := 1; i < len(leaderboard); i++ {
		assert.GreaterOrEqual(t,
			leaderboard[i-1].TotalExercises,
			leaderboard[i].TotalExercises,
		)
	}
}

func TestHandler_HandleLeaderboard_Cached(t *testing.T) {
	repo, router := newTestHandlerAndRouter(t)
	addTestAccount(t, repo, "u1", "first", 100)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users/leaderboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// a new user does not show up while the cached response is fresh
	addTestAccount(t, repo, "u2", "second", 200)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users/leaderboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var leaderboard []User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leaderboard))
	assert.Len(t, leaderboard, 1)
}
