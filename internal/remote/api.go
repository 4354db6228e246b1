// Package remote is the HTTP client for the fitdice backend API,
// used by the mobile/desktop app side of the project.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/2beens/fitdice/internal/exercises"
	"github.com/2beens/fitdice/internal/telemetry/tracing"
	"github.com/2beens/fitdice/internal/users"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrUsernameTaken    = errors.New("username taken")
	ErrUserNotFound     = errors.New("user not found")
)

// Session is what the backend returns on register and login.
type Session struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

type Api struct {
	baseEndpoint string
	httpClient   *http.Client
}

func NewApi(baseEndpoint string, httpClient *http.Client) *Api {
	return &Api{
		baseEndpoint: baseEndpoint,
		httpClient:   httpClient,
	}
}

func (api *Api) Register(ctx context.Context, username, email, password string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	reqBody, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal register request: %w", err)
	}

	respBytes, status, err := api.do(ctx, "POST", "/api/auth/register", "", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	if status == http.StatusConflict {
		return nil, ErrUsernameTaken
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("register: unexpected status %d", status)
	}

	var session Session
	if err := json.Unmarshal(respBytes, &session); err != nil {
		return nil, fmt.Errorf("unmarshal register response: %w", err)
	}
	return &session, nil
}

func (api *Api) Login(ctx context.Context, username, password string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	reqBody, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}

	respBytes, status, err := api.do(ctx, "POST", "/api/auth/login", "", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrWrongCredentials
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("login: unexpected status %d", status)
	}

	var session Session
	if err := json.Unmarshal(respBytes, &session); err != nil {
		return nil, fmt.Errorf("unmarshal login response: %w", err)
	}
	return &session, nil
}

func (api *Api) Logout(ctx context.Context, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.logout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	req, err := http.NewRequestWithContext(ctx, "GET", api.baseEndpoint+"/api/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-FITDICE-TOKEN", token)

	resp, err := api.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("logout: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (api *Api) GetUser(ctx context.Context, id string) (_ *users.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.getUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id))

	respBytes, status, err := api.do(ctx, "GET", "/api/users/"+id, "", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get user: unexpected status %d", status)
	}

	var user users.User
	if err := json.Unmarshal(respBytes, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &user, nil
}

func (api *Api) SearchUsers(ctx context.Context, query string) (_ []users.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.searchUsers")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	respBytes, status, err := api.do(ctx, "GET", "/api/users/search?query="+url.QueryEscape(query), "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search users: unexpected status %d", status)
	}

	var found []users.User
	if err := json.Unmarshal(respBytes, &found); err != nil {
		return nil, fmt.Errorf("unmarshal search results: %w", err)
	}
	return found, nil
}

func (api *Api) Leaderboard(ctx context.Context) (_ []users.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.leaderboard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	respBytes, status, err := api.do(ctx, "GET", "/api/users/leaderboard", "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("leaderboard: unexpected status %d", status)
	}

	var leaderboard []users.User
	if err := json.Unmarshal(respBytes, &leaderboard); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
	}
	return leaderboard, nil
}

func (api *Api) SaveExercise(ctx context.Context, userID string, exercise exercises.Exercise) (_ *exercises.AddExerciseResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.saveExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	reqBody, err := json.Marshal(exercise)
	if err != nil {
		return nil, fmt.Errorf("marshal exercise: %w", err)
	}

	respBytes, status, err := api.do(ctx, "POST", "/api/exercises", userID, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("save exercise: unexpected status %d", status)
	}

	var saved exercises.AddExerciseResponse
	if err := json.Unmarshal(respBytes, &saved); err != nil {
		return nil, fmt.Errorf("unmarshal saved exercise: %w", err)
	}
	return &saved, nil
}

func (api *Api) DailyStats(ctx context.Context, userID string, days int) (_ []exercises.DailyStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.dailyStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	path := "/api/statistics/daily?days=" + strconv.Itoa(days)
	respBytes, status, err := api.do(ctx, "GET", path, userID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("daily stats: unexpected status %d", status)
	}

	var stats []exercises.DailyStat
	if err := json.Unmarshal(respBytes, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal daily stats: %w", err)
	}
	return stats, nil
}

func (api *Api) do(ctx context.Context, method, path, userID string, body io.Reader) (_ []byte, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, method, api.baseEndpoint+path, body)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	resp, err := api.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response bytes: %w", err)
	}

	log.Tracef("%s %s -> %d", method, path, resp.StatusCode)
	return respBytes, resp.StatusCode, nil
}
