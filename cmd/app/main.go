package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/2beens/fitdice/internal/localstore"
	"github.com/2beens/fitdice/internal/logging"
	"github.com/2beens/fitdice/internal/remote"
	"github.com/2beens/fitdice/internal/session"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type appConfig struct {
	ApiBaseURL  string        `env:"FITDICE_API_URL, default=http://localhost:8080"`
	DBPath      string        `env:"FITDICE_DB_PATH"`
	LogLevel    string        `env:"FITDICE_LOG_LEVEL, default=info"`
	LogsPath    string        `env:"FITDICE_LOGS_PATH"`
	HttpTimeout time.Duration `env:"FITDICE_HTTP_TIMEOUT, default=10s"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cfg appConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName: cfg.LogsPath,
		LogToStdout: cfg.LogsPath == "",
		LogLevel:    cfg.LogLevel,
	})

	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		if dbPath, err = localstore.DefaultDBPath(); err != nil {
			log.Fatalf("resolve db path: %s", err)
		}
	}

	store, err := localstore.New(dbPath)
	if err != nil {
		log.Fatalf("open local store: %s", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("close local store: %s", err)
		}
	}()
	log.Debugf("local store: %s", dbPath)

	api := remote.NewApi(cfg.ApiBaseURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.HttpTimeout,
	})

	container, err := session.NewContainer(ctx, session.NewContainerParams{
		Store: store,
		Api:   api,
	})
	if err != nil {
		log.Fatalf("new session container: %s", err)
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		receivedSig := <-chOsInterrupt
		log.Warnf("signal [%s] received, closing ...", receivedSig)
		cancel()
		os.Exit(0)
	}()

	runREPL(ctx, container)
}

func runREPL(ctx context.Context, container *session.Container) {
	updates := container.Subscribe()
	go func() {
		for range updates {
			render(container.Snapshot())
		}
	}()

	fmt.Println("fitdice - commands: login <user> <pass> | register <user> <email> <pass> | roll | stats | clear | search <query> | leaderboard | logout | quit")
	render(container.Snapshot())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "login":
			if len(fields) < 3 {
				fmt.Println("usage: login <user> <pass>")
				continue
			}
			container.Login(ctx, fields[1], fields[2])
		case "register":
			if len(fields) < 4 {
				fmt.Println("usage: register <user> <email> <pass>")
				continue
			}
			container.Register(ctx, fields[1], fields[2], fields[3])
		case "roll":
			if err := container.Roll(ctx); err != nil {
				log.Errorf("roll: %s", err)
			}
		case "stats":
			container.Navigate(ctx, session.ScreenStatistics)
		case "clear":
			if err := container.ClearStatistics(ctx); err != nil {
				log.Errorf("clear statistics: %s", err)
			}
		case "search":
			container.SearchUsers(ctx, strings.Join(fields[1:], " "))
		case "leaderboard":
			container.Navigate(ctx, session.ScreenLeaderboard)
			container.RefreshLeaderboard(ctx)
		case "logout":
			container.Logout(ctx)
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command: %s\n", fields[0])
		}
	}
}

func render(state session.State) {
	switch {
	case state.IsRolling:
		fmt.Println("rolling ...")
	case state.CurrentExercise != nil:
		fmt.Printf(
			"[%d] %s: %s (%s), today: %d\n",
			state.CurrentDiceFace,
			state.SelectedType.DisplayName(),
			state.CurrentExercise.Name,
			state.CurrentExercise.Duration,
			state.TodayCount,
		)
	case state.IsLoggedIn && state.CurrentUser != nil:
		fmt.Printf(
			"%s @ %s, total: %d, streak: %d\n",
			state.CurrentUser.Username,
			state.CurrentScreen,
			state.CurrentUser.TotalExercises,
			state.CurrentUser.Streak,
		)
	default:
		fmt.Printf("screen: %s\n", state.CurrentScreen)
	}

	if state.CurrentScreen == session.ScreenStatistics {
		for _, dc := range state.DailyStats {
			fmt.Printf("  %s: %d\n", dc.Date, dc.Count)
		}
	}
	if state.CurrentScreen == session.ScreenLeaderboard {
		for i, u := range state.Leaderboard {
			fmt.Printf("  #%d %s (%d)\n", i+1, u.Username, u.TotalExercises)
		}
	}
	if len(state.SearchResults) > 0 {
		for _, u := range state.SearchResults {
			fmt.Printf("  found: %s (%d)\n", u.Username, u.TotalExercises)
		}
	}
}
