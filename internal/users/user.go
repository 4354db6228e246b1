package users

import "time"

// User is the account shape shared by the backend API and the client app.
// IsFriend is client-side only state and never set by the backend.
type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	TotalExercises  int    `json:"totalExercises"`
	WeeklyExercises int    `json:"weeklyExercises"`
	Streak          int    `json:"streak"`
	IsFriend        bool   `json:"isFriend,omitempty"`
}

// Account is the backend-side record, i.e. a User plus the fields
// that must never leave the service.
type Account struct {
	User
	PasswordHash string
	CreatedAt    time.Time
}
