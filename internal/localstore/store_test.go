package localstore

import (
	"context"
	"testing"

	"github.com/2beens/fitdice/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestStore_Events(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.InsertEvent(ctx, ExerciseEvent{
		Name:        "Plank",
		Description: "Hold the plank position",
		Duration:    "30-60 sec",
		Type:        "CORE",
		Date:        "07.03.2026",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = s.InsertEvent(ctx, ExerciseEvent{
		Name: "Squats",
		Type: "LEGS",
		Date: "07.03.2026",
	})
	require.NoError(t, err)

	_, err = s.InsertEvent(ctx, ExerciseEvent{
		Name: "Burpees",
		Type: "CARDIO",
		Date: "06.03.2026",
	})
	require.NoError(t, err)

	events, err := s.EventsByDate(ctx, "07.03.2026")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Plank", events[0].Name)
	assert.Equal(t, "CORE", events[0].Type)
	assert.False(t, events[0].CreatedAt.IsZero())
	assert.Equal(t, "Squats", events[1].Name)

	count, err := s.CountForDate(ctx, "07.03.2026")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.CountForDate(ctx, "01.01.2026")
	require.NoError(t, err)
	assert.Zero(t, count)

	counts, err := s.DailyCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	byDate := map[string]int{}
	for _, dc := range counts {
		byDate[dc.Date] = dc.Count
	}
	assert.Equal(t, 2, byDate["07.03.2026"])
	assert.Equal(t, 1, byDate["06.03.2026"])
}

func TestStore_DeleteAllEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.InsertEvent(ctx, ExerciseEvent{
			Name: "Push ups",
			Type: "STRENGTH",
			Date: "07.03.2026",
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteAllEvents(ctx))

	counts, err := s.DailyCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestStore_Profile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetProfile(ctx)
	assert.ErrorIs(t, err, ErrNoProfile)

	user := users.User{
		ID:              "u1",
		Username:        "roller",
		Email:           "roller@fitdice.app",
		TotalExercises:  45,
		WeeklyExercises: 12,
		Streak:          4,
	}
	require.NoError(t, s.PutProfile(ctx, user))

	got, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, *got)

	// a second put replaces the stored profile
	user.TotalExercises = 46
	require.NoError(t, s.PutProfile(ctx, user))
	got, err = s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 46, got.TotalExercises)

	require.NoError(t, s.DeleteProfile(ctx))
	_, err = s.GetProfile(ctx)
	assert.ErrorIs(t, err, ErrNoProfile)
}
