package exercises

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fitdice/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrUnknownUser = errors.New("unknown user")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores the exercise and bumps the owner's counters in the same
// transaction, so the totals can never drift from the saved events.
func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", exercise.UserID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w [rollback: %s]", err, rollbackErr)
			}
		}
	}()

	var id int
	err = tx.QueryRow(
		ctx,
		`INSERT INTO exercises
				(user_id, name, description, duration, type, date, timestamp)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		exercise.UserID, exercise.Name, exercise.Description,
		exercise.Duration, exercise.Type, exercise.Date, exercise.Timestamp,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE users
			SET total_exercises = total_exercises + 1,
				weekly_exercises = weekly_exercises + 1
			WHERE id = $1;`,
		exercise.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update user counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUnknownUser
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", id))

	exercise.ID = id
	return &exercise, nil
}

// CountForDate returns how many exercises the user saved on the given day.
func (r *Repo) CountForDate(ctx context.Context, userID, date string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.countForDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM exercises WHERE user_id = $1 AND date = $2;`,
		userID, date,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DailyStats returns per-day exercise counts for the user, most recent day
// first, at most days entries.
func (r *Repo) DailyStats(ctx context.Context, userID string, days int) (_ []DailyStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.dailyStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("days", days),
	)

	rows, err := r.db.Query(
		ctx,
		`SELECT date, COUNT(*)
			FROM exercises
			WHERE user_id = $1
			GROUP BY date
			ORDER BY MAX(timestamp) DESC
			LIMIT $2;`,
		userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.Date, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats == nil {
		stats = make([]DailyStat, 0)
	}
	return stats, nil
}
