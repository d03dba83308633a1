package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"smsbridge/internal/api"
	"smsbridge/internal/config"
	"smsbridge/internal/metrics"
	"smsbridge/internal/realtime"
	"smsbridge/internal/session"
	"smsbridge/internal/state"
	"smsbridge/internal/status"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("bridge exited")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := session.Open(cfg.SessionFile)
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	collector := metrics.NewCollector(registry)

	client, err := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Session: sess,
		Timeout: cfg.RequestTimeout,
		Logger:  log.With().Str("component", "api").Logger(),
		Metrics: collector,
	})
	if err != nil {
		return err
	}

	authAPI := api.NewAuthAPI(client, sess)
	deviceAPI := api.NewDeviceAPI(client)
	messageAPI := api.NewMessageAPI(client, cfg.SendRate, cfg.SendBurst)
	statsAPI := api.NewStatsAPI(messageAPI, deviceAPI)

	if !sess.Authenticated() || sess.TokenExpired(time.Now()) {
		if cfg.Email == "" || cfg.Password == "" {
			return errors.New("no valid session; set BRIDGE_EMAIL and BRIDGE_PASSWORD")
		}
		if _, err := authAPI.Login(ctx, cfg.Email, cfg.Password); err != nil {
			return err
		}
		log.Info().Str("email", cfg.Email).Msg("logged in")
	} else {
		log.Info().Msg("resuming stored session")
	}

	mgr := state.NewManager(
		state.NewDevices(deviceAPI),
		state.NewKeys(deviceAPI),
		state.NewMessages(messageAPI),
		state.NewStats(statsAPI),
		log.With().Str("component", "state").Logger(),
	)
	if err := mgr.LoadInitial(ctx); err != nil {
		return err
	}
	log.Info().
		Int("devices", mgr.Devices.Count()).
		Int("apiKeys", mgr.Keys.Count()).
		Int("messages", mgr.Messages.Count()).
		Msg("initial snapshot loaded")

	rt := realtime.New(realtime.Options{
		URL:            cfg.RealtimeURL,
		ReconnectDelay: cfg.ReconnectDelay,
		MaxBackoff:     cfg.MaxBackoff,
		Logger:         log.With().Str("component", "realtime").Logger(),
		Metrics:        collector,
	})
	unsubscribe := mgr.Subscribe(rt)
	defer unsubscribe()

	if err := rt.Connect(ctx); err != nil {
		// The reconnect timer keeps trying; the snapshot just goes stale
		// until it succeeds.
		log.Warn().Err(err).Msg("realtime connect failed, retrying in background")
	}
	defer rt.Disconnect()

	gin.SetMode(gin.ReleaseMode)
	router := status.NewRouter(status.Deps{State: mgr, Realtime: rt, Registry: registry})
	go func() {
		log.Info().Int("port", cfg.StatusPort).Msg("status server listening")
		if err := status.Run(cfg.StatusPort, router); err != nil {
			log.Error().Err(err).Msg("status server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}
