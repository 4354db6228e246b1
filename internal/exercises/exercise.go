package exercises

import "time"

// DateLayout is the day key used across the app and the API, e.g. "07.03.2026".
const DateLayout = "02.01.2006"

type Exercise struct {
	ID          int       `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Duration    string    `json:"duration"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

type AddExerciseResponse struct {
	Exercise
	CountToday int `json:"countToday"`
}

// DailyStat is the number of exercises done on one day.
type DailyStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
