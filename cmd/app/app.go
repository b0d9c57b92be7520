package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	v1 "evote/api/v1"
	"evote/internal/config"
	"evote/internal/poll"
	"evote/internal/session"
	"evote/internal/store"
	"evote/pkg/async"
	"evote/pkg/ledger"
	"evote/pkg/logger"
	"evote/pkg/server"
	"evote/pkg/third/google"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp/reuseport"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file, relying on the process environment")
	}
	cfg := config.Load()

	level := zerolog.InfoLevel
	if !cfg.Production() {
		level = zerolog.DebugLevel
	}
	logger.Configure(level)

	ctx := context.Background()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := st.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	// The ledger client is optional: without it blockchain polls
	// resolve to LedgerUnavailable instead of breaking the whole app.
	var led poll.Ledger
	if cfg.ChainRPCURL != "" {
		client, err := ledger.Dial(ctx, cfg.ChainRPCURL, cfg.ContractAddress, cfg.ChainPrivateKey, cfg.ChainID)
		if err != nil {
			log.Warn().Err(err).Msg("ledger client unavailable, blockchain polls degraded")
		} else {
			led = client
			log.Info().Str("contract", client.Address()).Msg("ledger client connected")
		}
	}

	sessions := session.New(cfg.RedisURL, cfg.Production())
	oauth := google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BackendURL+"/auth/google/callback")
	svc := poll.NewService(st, led)

	app := server.NewFiber(cfg.FrontendURL)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
	}))

	v1.SetupRoutes(app, v1.Deps{
		Users:           st,
		Polls:           svc,
		Sessions:        sessions,
		OAuth:           oauth,
		ContractAddress: cfg.ContractAddress,
		FrontendURL:     cfg.FrontendURL,
	})

	run(app, st, cfg)
}

func run(app *fiber.App, st *store.Store, cfg config.Config) {
	if !cfg.Production() {
		log.Info().Msg("development mode enabled")
		log.Fatal().Err(app.Listen(cfg.Port)).Send()
		return
	}

	ln, err := reuseport.Listen("tcp4", cfg.Port)
	if err != nil {
		log.Panic().Err(err).Msg("listen failed")
	}

	errCh := async.ErrAble(func() error {
		return app.Listener(ln)
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGHUP)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server stopped")
	case <-c:
	}

	log.Info().Msg("hot restarting server...")
	exe, _ := os.Executable()
	cmd := exec.Command(exe)
	if err := cmd.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start replacement process")
	}
	_ = app.Shutdown()
	log.Info().Msg("closing database pool...")
	st.Close()
}
