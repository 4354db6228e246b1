// Package session is the state container behind the app UI. Every user
// intent goes through the Container, which owns the single source of truth
// and publishes immutable snapshots to subscribers.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fitdice/internal/catalog"
	"github.com/2beens/fitdice/internal/exercises"
	"github.com/2beens/fitdice/internal/localstore"
	"github.com/2beens/fitdice/internal/remote"
	"github.com/2beens/fitdice/internal/users"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	defaultRollThrottle = 2 * time.Second
	defaultSuspense     = 1500 * time.Millisecond
)

// Store is the on-device persistence the container needs.
type Store interface {
	InsertEvent(ctx context.Context, ev localstore.ExerciseEvent) (int64, error)
	DailyCounts(ctx context.Context) ([]localstore.DailyCount, error)
	DeleteAllEvents(ctx context.Context) error
	PutProfile(ctx context.Context, user users.User) error
	DeleteProfile(ctx context.Context) error
}

// Api is the backend client surface the container needs.
type Api interface {
	Register(ctx context.Context, username, email, password string) (*remote.Session, error)
	Login(ctx context.Context, username, password string) (*remote.Session, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, id string) (*users.User, error)
	SearchUsers(ctx context.Context, query string) ([]users.User, error)
	Leaderboard(ctx context.Context) ([]users.User, error)
	SaveExercise(ctx context.Context, userID string, exercise exercises.Exercise) (*exercises.AddExerciseResponse, error)
}

// DemoUsers is the built-in directory used when the backend is unreachable.
var DemoUsers = []users.User{
	{ID: "1", Username: "000", Email: "000@example.com", TotalExercises: 156, WeeklyExercises: 23, Streak: 7},
	{ID: "2", Username: "111", Email: "111@example.com", TotalExercises: 203, WeeklyExercises: 31, Streak: 12},
	{ID: "3", Username: "222", Email: "222@example.com", TotalExercises: 89, WeeklyExercises: 15, Streak: 3},
	{ID: "4", Username: "333", Email: "333@example.com", TotalExercises: 134, WeeklyExercises: 28, Streak: 9},
	{ID: "5", Username: "444", Email: "444@example.com", TotalExercises: 178, WeeklyExercises: 19, Streak: 5},
}

type Container struct {
	mu    sync.Mutex
	state State
	token string

	store Store
	api   Api

	// injectable clock / randomness / delays for deterministic tests
	nowFunc  func() time.Time
	randIntn func(n int) int
	throttle time.Duration
	suspense time.Duration

	demoUsers []users.User
	lastRoll  time.Time

	subscribers []chan struct{}
}

type NewContainerParams struct {
	Store Store
	Api   Api
	// all optional, sane defaults applied
	NowFunc   func() time.Time
	RandIntn  func(n int) int
	Throttle  time.Duration
	Suspense  time.Duration
	DemoUsers []users.User
}

func NewContainer(ctx context.Context, params NewContainerParams) (*Container, error) {
	if params.Store == nil || params.Api == nil {
		return nil, fmt.Errorf("store and api are required")
	}
	if params.NowFunc == nil {
		params.NowFunc = time.Now
	}
	if params.RandIntn == nil {
		params.RandIntn = rand.Intn
	}
	if params.Throttle == 0 {
		params.Throttle = defaultRollThrottle
	}
	if params.Suspense == 0 {
		params.Suspense = defaultSuspense
	}
	if params.DemoUsers == nil {
		params.DemoUsers = DemoUsers
	}

	c := &Container{
		state:     newInitialState(),
		store:     params.Store,
		api:       params.Api,
		nowFunc:   params.NowFunc,
		randIntn:  params.RandIntn,
		throttle:  params.Throttle,
		suspense:  params.Suspense,
		demoUsers: params.DemoUsers,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// seed the demo leaderboard, best first
	c.state.Leaderboard = demoLeaderboard(c.demoUsers)

	if err := c.refreshStatsLocked(ctx); err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	return c, nil
}

// Subscribe returns a channel that gets a (coalesced) tick whenever
// a new snapshot is published.
func (c *Container) Subscribe() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Snapshot returns a copy of the current state.
func (c *Container) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Login signs the user in. When the backend rejects or is unreachable, the
// app degrades to a built-in demo profile instead of failing.
func (c *Container) Login(ctx context.Context, username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user := users.User{
		ID:              "current",
		Username:        username,
		Email:           username + "@example.com",
		TotalExercises:  45,
		WeeklyExercises: 12,
		Streak:          4,
	}

	session, err := c.api.Login(ctx, username, password)
	if err != nil {
		log.Tracef("login fallback to demo profile: %s", err)
	} else {
		user = session.User
		c.token = session.Token
	}

	if err := c.store.PutProfile(ctx, user); err != nil {
		log.Errorf("failed to persist profile: %s", err)
	}

	c.state.IsLoggedIn = true
	c.state.CurrentUser = &user
	c.state.CurrentScreen = ScreenMain
	c.publishLocked()
}

// Register creates an account; the offline fallback is a fresh zero-stats
// profile.
func (c *Container) Register(ctx context.Context, username, email, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user := users.User{
		ID:       "new",
		Username: username,
		Email:    email,
	}

	session, err := c.api.Register(ctx, username, email, password)
	if err != nil {
		log.Tracef("register fallback to fresh profile: %s", err)
	} else {
		user = session.User
		c.token = session.Token
	}

	if err := c.store.PutProfile(ctx, user); err != nil {
		log.Errorf("failed to persist profile: %s", err)
	}

	c.state.IsLoggedIn = true
	c.state.CurrentUser = &user
	c.state.CurrentScreen = ScreenMain
	c.publishLocked()
}

// Logout drops the session and all in-memory social state and returns to
// the login screen.
func (c *Container) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		if err := c.api.Logout(ctx, c.token); err != nil {
			log.Tracef("remote logout: %s", err)
		}
		c.token = ""
	}

	if err := c.store.DeleteProfile(ctx); err != nil {
		log.Errorf("failed to delete profile: %s", err)
	}

	c.state = newInitialState()
	c.publishLocked()
}

// Roll is the dice roll: pick a random workout type and exercise, record
// the event locally, best-effort sync it to the backend, and refresh the
// statistics window. Rolls within the throttle window of the last accepted
// roll, or while a roll is in flight, are silently ignored.
func (c *Container) Roll(ctx context.Context) error {
	c.mu.Lock()
	now := c.nowFunc()
	if c.state.IsRolling || (!c.lastRoll.IsZero() && now.Sub(c.lastRoll) < c.throttle) {
		c.mu.Unlock()
		return nil
	}
	c.lastRoll = now
	c.state.IsRolling = true
	c.publishLocked()
	c.mu.Unlock()

	// the suspense pause, lets the UI animate the rolling dice
	select {
	case <-ctx.Done():
		c.mu.Lock()
		c.state.IsRolling = false
		c.publishLocked()
		c.mu.Unlock()
		return ctx.Err()
	case <-time.After(c.suspense):
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	face := c.randIntn(6) + 1
	selectedType, err := catalog.TypeForFace(face)
	if err != nil {
		selectedType = catalog.Cardio
		face = 1
	}
	exercise, ok := catalog.Pick(selectedType, c.randIntn)
	if !ok {
		c.state.IsRolling = false
		c.publishLocked()
		return fmt.Errorf("empty catalog for type %s", selectedType)
	}

	today := c.nowFunc().Format(exercises.DateLayout)

	if _, err := c.store.InsertEvent(ctx, localstore.ExerciseEvent{
		Name:        exercise.Name,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Type:        string(exercise.Type),
		Date:        today,
		CreatedAt:   c.nowFunc(),
	}); err != nil {
		c.state.IsRolling = false
		c.publishLocked()
		return fmt.Errorf("insert exercise event: %w", err)
	}

	// best effort server sync, network errors are ignored
	if c.state.CurrentUser != nil {
		if _, err := c.api.SaveExercise(ctx, c.state.CurrentUser.ID, exercises.Exercise{
			Name:        exercise.Name,
			Description: exercise.Description,
			Duration:    exercise.Duration,
			Type:        string(exercise.Type),
			Date:        today,
		}); err != nil {
			log.Tracef("save exercise to backend: %s", err)
		}
	}

	if err := c.refreshStatsLocked(ctx); err != nil {
		log.Errorf("refresh statistics after roll: %s", err)
	}

	if c.state.CurrentUser != nil {
		updated := *c.state.CurrentUser
		updated.TotalExercises++
		updated.WeeklyExercises++
		c.state.CurrentUser = &updated
	}

	c.state.IsRolling = false
	c.state.CurrentExercise = &exercise
	c.state.SelectedType = selectedType
	c.state.CurrentDiceFace = face
	c.publishLocked()
	return nil
}

// SelectType is a manual workout type choice, equivalent to placing the
// dice on that type's face. No event is recorded.
func (c *Container) SelectType(t catalog.WorkoutType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	face := t.DiceFace()
	if face == 0 {
		return
	}
	c.state.SelectedType = t
	c.state.CurrentDiceFace = face
	c.publishLocked()
}

// Navigate switches screens; entering statistics refreshes the window.
func (c *Container) Navigate(ctx context.Context, screen Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.CurrentScreen = screen
	if screen == ScreenStatistics {
		if err := c.refreshStatsLocked(ctx); err != nil {
			log.Errorf("refresh statistics: %s", err)
		}
	}
	c.publishLocked()
}

// ClearStatistics wipes the local exercise history.
func (c *Container) ClearStatistics(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteAllEvents(ctx); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	if err := c.refreshStatsLocked(ctx); err != nil {
		return fmt.Errorf("refresh statistics: %w", err)
	}
	c.publishLocked()
	return nil
}

// SearchUsers queries the backend; when unreachable it falls back to the
// built-in demo directory (case-insensitive substring match, never
// including the current user).
func (c *Container) SearchUsers(ctx context.Context, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found, err := c.api.SearchUsers(ctx, query)
	if err != nil {
		log.Tracef("search users fallback to demo directory: %s", err)
		found = c.demoSearchLocked(query)
	}

	c.state.SearchResults = found
	c.publishLocked()
}

// SendFriendRequest records the outgoing request in the snapshot. There is
// no backend endpoint for friend requests, so nothing leaves the device.
func (c *Container) SendFriendRequest(user users.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.state.Friends {
		if f.ID == user.ID {
			return
		}
	}
	for _, r := range c.state.SentFriendRequests {
		if r.FromUser.ID == user.ID {
			return
		}
	}

	c.state.SentFriendRequests = append(c.state.SentFriendRequests, FriendRequest{
		ID:       uuid.NewString(),
		FromUser: user,
		Status:   "pending",
	})
	c.publishLocked()
}

// ReceiveFriendRequest adds an incoming request to the pending list.
// Duplicates (same request id) are ignored.
func (c *Container) ReceiveFriendRequest(request FriendRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.state.FriendRequests {
		if r.ID == request.ID {
			return
		}
	}
	c.state.FriendRequests = append(c.state.FriendRequests, request)
	c.publishLocked()
}

// AcceptFriendRequest moves the sender to the friends list. Accepting an
// already handled request is a no-op.
func (c *Container) AcceptFriendRequest(request FriendRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.removePendingLocked(request.ID) {
		return
	}

	for _, f := range c.state.Friends {
		if f.ID == request.FromUser.ID {
			c.publishLocked()
			return
		}
	}

	friend := request.FromUser
	friend.IsFriend = true
	c.state.Friends = append(c.state.Friends, friend)
	c.publishLocked()
}

// RejectFriendRequest drops the pending request.
func (c *Container) RejectFriendRequest(request FriendRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.removePendingLocked(request.ID) {
		c.publishLocked()
	}
}

// RefreshLeaderboard asks the backend for the leaderboard, falling back to
// the demo directory sorted by total exercises.
func (c *Container) RefreshLeaderboard(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	leaderboard, err := c.api.Leaderboard(ctx)
	if err != nil {
		log.Tracef("leaderboard fallback to demo users: %s", err)
		leaderboard = demoLeaderboard(c.demoUsers)
	}

	c.state.Leaderboard = leaderboard
	c.publishLocked()
}

// RefreshUser re-fetches the current user's profile; on failure the
// current value is kept.
func (c *Container) RefreshUser(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.CurrentUser == nil {
		return
	}

	user, err := c.api.GetUser(ctx, c.state.CurrentUser.ID)
	if err != nil {
		log.Tracef("refresh user: %s", err)
		return
	}

	if err := c.store.PutProfile(ctx, *user); err != nil {
		log.Errorf("failed to persist profile: %s", err)
	}

	c.state.CurrentUser = user
	c.publishLocked()
}

func (c *Container) refreshStatsLocked(ctx context.Context) error {
	counts, err := c.store.DailyCounts(ctx)
	if err != nil {
		return err
	}

	window := statsWindow(counts, c.nowFunc())
	c.state.DailyStats = window
	c.state.TodayCount = window[len(window)-1].Count
	return nil
}

func (c *Container) demoSearchLocked(query string) []users.User {
	currentID := ""
	if c.state.CurrentUser != nil {
		currentID = c.state.CurrentUser.ID
	}

	found := make([]users.User, 0)
	for _, u := range c.demoUsers {
		if u.ID == currentID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			found = append(found, u)
		}
	}
	return found
}

func (c *Container) removePendingLocked(requestID string) bool {
	for i, r := range c.state.FriendRequests {
		if r.ID == requestID {
			c.state.FriendRequests = append(
				c.state.FriendRequests[:i],
				c.state.FriendRequests[i+1:]...,
			)
			return true
		}
	}
	return false
}

func (c *Container) publishLocked() {
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func demoLeaderboard(demoUsers []users.User) []users.User {
	leaderboard := append([]users.User(nil), demoUsers...)
	sort.Slice(leaderboard, func(i, j int) bool {
		return leaderboard[i].TotalExercises > leaderboard[j].TotalExercises
	})
	return leaderboard
}
