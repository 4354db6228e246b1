package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/fitdice/internal/exercises"
	"github.com/2beens/fitdice/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApi_RegisterAndLogin(t *testing.T) {
	testUser := users.User{ID: "u1", Username: "roller", TotalExercises: 45}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))

		switch r.URL.Path {
		case "/api/auth/register":
			if creds["username"] == "taken" {
				http.Error(w, "username taken", http.StatusConflict)
				return
			}
			w.WriteHeader(http.StatusCreated)
			require.NoError(t, json.NewEncoder(w).Encode(Session{Token: "tok-reg", User: testUser}))
		case "/api/auth/login":
			if creds["password"] != "testpass" {
				http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
				return
			}
			require.NoError(t, json.NewEncoder(w).Encode(Session{Token: "tok-login", User: testUser}))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	api := NewApi(ts.URL, ts.Client())
	ctx := context.Background()

	session, err := api.Register(ctx, "roller", "roller@fitdice.app", "testpass")
	require.NoError(t, err)
	assert.Equal(t, "tok-reg", session.Token)
	assert.Equal(t, testUser, session.User)

	_, err = api.Register(ctx, "taken", "", "testpass")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	session, err = api.Login(ctx, "roller", "testpass")
	require.NoError(t, err)
	assert.Equal(t, "tok-login", session.Token)

	_, err = api.Login(ctx, "roller", "wrong")
	assert.ErrorIs(t, err, ErrWrongCredentials)
}

func TestApi_Logout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/logout", r.URL.Path)
		if r.Header.Get("X-FITDICE-TOKEN") != "tok-1" {
			http.Error(w, "no can do", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("logged-out"))
	}))
	defer ts.Close()

	api := NewApi(ts.URL, ts.Client())

	require.NoError(t, api.Logout(context.Background(), "tok-1"))
	assert.Error(t, api.Logout(context.Background(), "bogus"))
}

func TestApi_Users(t *testing.T) {
	testUsers := []users.User{
		{ID: "u2", Username: "anna", TotalExercises: 80},
		{ID: "u1", Username: "roller", TotalExercises: 45},
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/search":
			assert.Equal(t, "ann a", r.URL.Query().Get("query"))
			require.NoError(t, json.NewEncoder(w).Encode(testUsers[:1]))
		case "/api/users/leaderboard":
			require.NoError(t, json.NewEncoder(w).Encode(testUsers))
		case "/api/users/u1":
			require.NoError(t, json.NewEncoder(w).Encode(testUsers[1]))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	api := NewApi(ts.URL, ts.Client())
	ctx := context.Background()

	user, err := api.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, testUsers[1], *user)

	_, err = api.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	found, err := api.SearchUsers(ctx, "ann a")
	require.NoError(t, err)
	assert.Equal(t, testUsers[:1], found)

	leaderboard, err := api.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, testUsers, leaderboard)
}

func TestApi_SaveExercise(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/exercises", r.URL.Path)
		require.Equal(t, "u1", r.Header.Get("X-User-Id"))

		var ex exercises.Exercise
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ex))
		assert.Equal(t, "Plank", ex.Name)

		ex.ID = 7
		ex.UserID = "u1"
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(exercises.AddExerciseResponse{
			Exercise:   ex,
			CountToday: 3,
		}))
	}))
	defer ts.Close()

	api := NewApi(ts.URL, ts.Client())

	saved, err := api.SaveExercise(context.Background(), "u1", exercises.Exercise{
		Name: "Plank",
		Type: "CORE",
		Date: "07.03.2026",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, saved.ID)
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, 3, saved.CountToday)
}

func TestApi_DailyStats(t *testing.T) {
	testStats := []exercises.DailyStat{
		{Date: "07.03.2026", Count: 4},
		{Date: "06.03.2026", Count: 2},
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/statistics/daily", r.URL.Path)
		require.Equal(t, "u1", r.Header.Get("X-User-Id"))
		require.Equal(t, "7", r.URL.Query().Get("days"))
		require.NoError(t, json.NewEncoder(w).Encode(testStats))
	}))
	defer ts.Close()

	api := NewApi(ts.URL, ts.Client())

	stats, err := api.DailyStats(context.Background(), "u1", 7)
	require.NoError(t, err)
	assert.Equal(t, testStats, stats)
}
