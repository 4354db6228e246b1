package exercises_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/2beens/fitdice/internal/exercises"
	"github.com/2beens/fitdice/internal/telemetry/metrics"
)

func TestHandler_HandleAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, metrics.NewTestManager())

	now := time.Now()
	testEx := exercises.Exercise{
		Name:        "Push ups",
		Description: "20 push ups, slow tempo",
		Duration:    "5 min",
		Type:        "STRENGTH",
		Timestamp:   now,
	}

	testExJson, err := json.Marshal(testEx)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "", bytes.NewReader(testExJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")

	today := now.Format(exercises.DateLayout)

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, ex exercises.Exercise) (*exercises.Exercise, error) {
			assert.Equal(t, "u1", ex.UserID)
			assert.Equal(t, testEx.Name, ex.Name)
			assert.Equal(t, testEx.Description, ex.Description)
			assert.Equal(t, testEx.Duration, ex.Duration)
			assert.Equal(t, testEx.Type, ex.Type)
			assert.Equal(t, today, ex.Date)
			assert.Equal(t,
				testEx.Timestamp.Truncate(time.Second).Unix(),
				ex.Timestamp.Truncate(time.Second).Unix(),
			)
			added := ex
			added.ID = 2
			return &added, nil
		}).Times(1)

	repoMock.EXPECT().
		CountForDate(gomock.Any(), "u1", today).
		Return(3, nil)

	h.HandleAdd(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var addExerciseResponse exercises.AddExerciseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addExerciseResponse))
	assert.Equal(t, 2, addExerciseResponse.ID)
	assert.Equal(t, "u1", addExerciseResponse.UserID)
	assert.Equal(t, testEx.Name, addExerciseResponse.Name)
	assert.Equal(t, testEx.Type, addExerciseResponse.Type)
	assert.Equal(t, today, addExerciseResponse.Date)
	assert.Equal(t, 3, addExerciseResponse.CountToday)
}

func TestHandler_HandleAdd_NoUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, metrics.NewTestManager())

	testExJson, err := json.Marshal(exercises.Exercise{Name: "Squats", Type: "LEGS"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "", bytes.NewReader(testExJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	h.HandleAdd(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleAdd_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, metrics.NewTestManager())

	testExJson, err := json.Marshal(exercises.Exercise{Name: "Squats", Type: "LEGS"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "", bytes.NewReader(testExJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "ghost")

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		Return(nil, exercises.ErrUnknownUser)

	h.HandleAdd(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleAdd_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, metrics.NewTestManager())

	testExJson, err := json.Marshal(exercises.Exercise{Description: "no name, no type"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "", bytes.NewReader(testExJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")

	h.HandleAdd(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleDailyStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, metrics.NewTestManager())

	testStats := []exercises.DailyStat{
		{Date: "07.03.2026", Count: 4},
		{Date: "06.03.2026", Count: 2},
		{Date: "04.03.2026", Count: 1},
	}

	repoMock.EXPECT().
		DailyStats(gomock.Any(), "u1", 7).
		Return(testStats, nil)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/api/statistics/daily", nil)
	require.NoError(t, err)
	req.Header.Set("X-User-Id", "u1")

	h.HandleDailyStats(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats []exercises.DailyStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, testStats, stats)
}

func TestHandler_HandleDailyStats_DaysParam(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		DailyStats(gomock.Any(), "u1", 30).
		Return([]exercises.DailyStat{}, nil)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/api/statistics/daily?days=30", nil)
	require.NoError(t, err)
	req.Header.Set("X-User-Id", "u1")

	h.HandleDailyStats(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_HandleDailyStats_InvalidDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockexercisesRepo(ctrl)
	h := exercises.NewHandler(repoMock, metrics.NewTestManager())

	for _, days := range []string{"0", "-1", "week"} {
		rec := httptest.NewRecorder()
		req, err := http.NewRequest("GET", "/api/statistics/daily?days="+days, nil)
		require.NoError(t, err)
		req.Header.Set("X-User-Id", "u1")

		h.HandleDailyStats(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}
