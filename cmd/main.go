package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firstcrack/internal/handlers"
	"firstcrack/internal/logger"
	"firstcrack/internal/models"
	"firstcrack/internal/repository"
	"firstcrack/internal/repository/db"
	"firstcrack/internal/router"
	"firstcrack/internal/scheduler"
	"firstcrack/internal/server"
	"firstcrack/internal/service"
	"firstcrack/internal/timeline"
	"firstcrack/internal/transport"

	"github.com/spf13/viper"
)

// navChannelSize buffers navigation events between the router and the UI
// consumer; overflow is dropped by the router, not blocked on.
const navChannelSize = 64

func main() {
	// load config.yml first so the logger level can come from it
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(logLevel())

	// the stage table is static; a bad table is a programmer error
	if err := timeline.Validate(); err != nil {
		log.Fatalw("invalid stage timeline", "err", err)
	}

	// open DB
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(database)
	sender := transport.NewFromConfig(viper.GetString("push.endpoint"), log)
	sched := scheduler.NewScheduler(repos.Brews, repos.Events, sender, log)
	rtr := router.NewRouter(log)
	services := service.NewService(repos, sched, rtr, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// attach the single navigation channel and drain it
	navCh := make(chan models.NavigationEvent, navChannelSize)
	rtr.Attach(navCh)
	go consumeNavigation(ctx, navCh, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, rtr, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func logLevel() string {
	if lvl := viper.GetString("log.level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return db.InitDB(dbPath)
}

// consumeNavigation is the UI-layer stand-in: it drains the router's single
// event channel until shutdown.
func consumeNavigation(ctx context.Context, navCh <-chan models.NavigationEvent, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-navCh:
			log.Infow("navigation_event",
				"action", ev.Action,
				"brew_id", ev.BrewID,
				"deep_link", ev.DeepLink,
			)
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, rtr *router.Router, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop routing into the navigation channel, then background goroutines
	rtr.Detach()
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
