package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fitdice/internal/middleware"
	"github.com/2beens/fitdice/internal/telemetry/metrics"
	"github.com/2beens/fitdice/internal/telemetry/tracing"
	"github.com/2beens/fitdice/internal/users"
	"github.com/2beens/fitdice/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type usersRepo interface {
	Create(ctx context.Context, account users.Account) error
	GetByUsername(ctx context.Context, username string) (*users.Account, error)
}

type Handler struct {
	authService *Service
	repo        usersRepo
	metrics     *metrics.Manager
}

func NewHandler(
	authService *Service,
	repo usersRepo,
	metrics *metrics.Manager,
) *Handler {
	return &Handler{
		authService: authService,
		repo:        repo,
		metrics:     metrics,
	}
}

func (handler *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	authRouter := router.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", handler.handleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", handler.handleLogout).Methods("GET", "OPTIONS").Name("logout")

	// rate limit the auth endpoints to prevent abuse
	authRouter.Use(middleware.RateLimit(rateLimiter, "auth", allowedPerMin, handler.metrics))
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is what both register and login return: the auth token
// plus the user the client should treat as logged in.
type sessionResponse struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.register")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	regReq, ok := handler.readCredentials(w, r)
	if !ok {
		return
	}

	passwordHash, err := pkg.HashPassword(regReq.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	account := users.Account{
		User: users.User{
			ID:       uuid.NewString(),
			Username: regReq.Username,
			Email:    regReq.Email,
		},
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := handler.repo.Create(ctx, account); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			http.Error(w, "username taken", http.StatusConflict)
			return
		}
		log.Errorf("register, create user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRegistrations.Inc()
	log.Tracef("new user registered: %s", account.Username)

	handler.writeSession(ctx, w, account.User, http.StatusCreated)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	loginReq, ok := handler.readCredentials(w, r)
	if !ok {
		return
	}

	account, err := handler.repo.GetByUsername(ctx, loginReq.Username)
	if errors.Is(err, users.ErrUserNotFound) {
		handler.metrics.CounterFailedLogins.Inc()
		log.Tracef("[username] failed login attempt for user: %s", loginReq.Username)
		http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Errorf("login, get user: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, account.PasswordHash) {
		handler.metrics.CounterFailedLogins.Inc()
		log.Tracef("[password] failed login attempt for user: %s", loginReq.Username)
		http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
		return
	}

	log.Tracef("new login success: %s", account.Username)
	handler.writeSession(ctx, w, account.User, http.StatusOK)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	authToken := r.Header.Get("X-FITDICE-TOKEN")
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	log.Printf("logout for [%s] success", authToken)
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) readCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var credsReq credentialsRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&credsReq); err != nil {
			log.Errorf("auth, unmarshal json params: %s", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return credentialsRequest{}, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("auth, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return credentialsRequest{}, false
		}
		credsReq = credentialsRequest{
			Username: r.Form.Get("username"),
			Email:    r.Form.Get("email"),
			Password: r.Form.Get("password"),
		}
	}

	if credsReq.Username == "" {
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return credentialsRequest{}, false
	}
	if credsReq.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return credentialsRequest{}, false
	}
	return credsReq, true
}

func (handler *Handler) writeSession(ctx context.Context, w http.ResponseWriter, user users.User, statusCode int) {
	token, err := handler.authService.CreateSession(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("auth, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(sessionResponse{
		Token: token,
		User:  user,
	})
	if err != nil {
		log.Errorf("auth, marshal session response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, statusCode)
}
