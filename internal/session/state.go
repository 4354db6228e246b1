package session

import (
	"github.com/2beens/fitdice/internal/catalog"
	"github.com/2beens/fitdice/internal/localstore"
	"github.com/2beens/fitdice/internal/users"
)

// Screen is the app screen the UI should currently show.
type Screen string

const (
	ScreenLogin       Screen = "LOGIN"
	ScreenRegister    Screen = "REGISTER"
	ScreenMain        Screen = "MAIN"
	ScreenStatistics  Screen = "STATISTICS"
	ScreenFriends     Screen = "FRIENDS"
	ScreenLeaderboard Screen = "LEADERBOARD"
)

// FriendRequest links two users. For incoming requests FromUser is the
// sender; for sent requests it is the addressee.
type FriendRequest struct {
	ID       string
	FromUser users.User
	Status   string
}

// State is one immutable snapshot of the whole app session. Consumers get
// copies and can never mutate the container's own state through them.
type State struct {
	IsLoggedIn      bool
	CurrentUser     *users.User
	IsRolling       bool
	CurrentExercise *catalog.Definition
	SelectedType    catalog.WorkoutType
	// DailyStats is the 7-day window, oldest first, ending today,
	// with explicit zero entries for empty days
	DailyStats         []localstore.DailyCount
	CurrentScreen      Screen
	TodayCount         int
	CurrentDiceFace    int
	Friends            []users.User
	FriendRequests     []FriendRequest
	SentFriendRequests []FriendRequest
	SearchResults      []users.User
	Leaderboard        []users.User
}

func newInitialState() State {
	return State{
		SelectedType:    catalog.Cardio,
		CurrentScreen:   ScreenLogin,
		CurrentDiceFace: 1,
	}
}

func (s State) clone() State {
	out := s
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	if s.CurrentExercise != nil {
		e := *s.CurrentExercise
		out.CurrentExercise = &e
	}
	out.DailyStats = append([]localstore.DailyCount(nil), s.DailyStats...)
	out.Friends = append([]users.User(nil), s.Friends...)
	out.FriendRequests = append([]FriendRequest(nil), s.FriendRequests...)
	out.SentFriendRequests = append([]FriendRequest(nil), s.SentFriendRequests...)
	out.SearchResults = append([]users.User(nil), s.SearchResults...)
	out.Leaderboard = append([]users.User(nil), s.Leaderboard...)
	return out
}
