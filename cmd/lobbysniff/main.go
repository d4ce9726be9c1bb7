package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/lobbysniff/internal/capture"
	"github.com/danmuck/lobbysniff/internal/config"
	"github.com/danmuck/lobbysniff/internal/journal"
	"github.com/danmuck/lobbysniff/internal/logging"
	"github.com/danmuck/lobbysniff/internal/observability"
	"github.com/danmuck/lobbysniff/internal/server"
	"github.com/danmuck/lobbysniff/internal/tracker"
	"github.com/danmuck/lobbysniff/internal/w3gs"
)

func main() {
	configPath := flag.String("config", "", "path to lobbysniff.toml")
	device := flag.String("iface", "", "capture interface (overrides config)")
	filter := flag.String("filter", "", "BPF filter (overrides config)")
	listDevices := flag.Bool("list-interfaces", false, "list capturable interfaces and exit")
	flag.Parse()

	logging.ConfigureRuntime()
	logger := observability.Logger("lobbysniff")

	if *listDevices {
		if err := printDevices(); err != nil {
			logger.Error().Err(err).Msg("list interfaces")
			os.Exit(1)
		}
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error().Err(err).Msg("load config")
			os.Exit(1)
		}
		cfg = loaded
	}
	if *device != "" {
		cfg.Capture.Device = *device
	}
	if *filter != "" {
		cfg.Capture.Filter = *filter
	}
	if cfg.Capture.Device == "" {
		logger.Error().Msg("no capture interface; use -iface or the config file")
		os.Exit(1)
	}
	logging.SetLevelFromString(cfg.Log.Level)
	observability.RegisterMetrics()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("lobbysniff stopped")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	src, err := capture.OpenLive(capture.Config{
		Device:      cfg.Capture.Device,
		Filter:      cfg.Capture.Filter,
		SnapLen:     cfg.Capture.SnapLen,
		Promiscuous: cfg.Capture.Promiscuous,
		PollTimeout: cfg.Capture.PollTimeout(),
	})
	if err != nil {
		return err
	}
	defer src.Close()
	logger.Info().
		Str("iface", cfg.Capture.Device).
		Str("filter", cfg.Capture.Filter).
		Msg("capture started")

	track := tracker.New()

	var jrnl *journal.Journal
	if cfg.Journal.Enabled {
		jrnl, err = journal.Open(cfg.Journal.Path, journal.Meta{
			Device: cfg.Capture.Device,
			Filter: cfg.Capture.Filter,
		})
		if err != nil {
			return err
		}
		defer jrnl.Close()
		logger.Info().Str("path", cfg.Journal.Path).Str("session", jrnl.Session()).Msg("journal open")
	}

	srv := server.New(track, cfg.HTTP.CorsOrigins)
	if cfg.HTTP.Enabled {
		go func() {
			if err := srv.Run(cfg.HTTP.Addr); err != nil {
				logger.Error().Err(err).Msg("http server")
			}
		}()
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http server started")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = captureLoop(ctx, src, track, jrnl, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn().Err(shutdownErr).Msg("http shutdown")
	}
	return err
}

// captureLoop polls the source until the context is cancelled or the source
// fails. Poll timeouts just loop again; they are how cancellation gets a
// chance to run.
func captureLoop(ctx context.Context, src *capture.Source, track *tracker.Tracker, jrnl *journal.Journal, logger zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("capture stopped")
			return nil
		default:
		}

		pkt, err := src.Poll()
		if errors.Is(err, capture.ErrTimeout) {
			observability.RecordPollTimeout()
			continue
		}
		if err != nil {
			observability.RecordCaptureError()
			return err
		}

		events := w3gs.DecodeFrame(pkt.Data, pkt.At)
		observability.RecordFrame(events)
		for _, ev := range events {
			logEvent(logger, ev)
			track.Apply(ev)
			if jrnl != nil {
				if err := jrnl.Append(ev); err != nil {
					logger.Warn().Err(err).Msg("journal append")
				}
			}
		}
	}
}

func logEvent(logger zerolog.Logger, ev w3gs.Event) {
	clock := ev.When().Clock()
	switch e := ev.(type) {
	case w3gs.PlayerJoined:
		logger.Info().Str("at", clock).Uint8("player", e.ID).Str("name", e.Name).Msg("player joined")
	case w3gs.PlayerLeft:
		logger.Info().Str("at", clock).Uint8("player", e.ID).Msg("player left")
	case w3gs.SlotUpdate:
		logger.Info().Str("at", clock).Int("occupied", len(e.Slots)).Msg("slots updated")
	case w3gs.Chat:
		logChat(logger, clock, e.Content)
	}
}

func logChat(logger zerolog.Logger, clock string, content w3gs.ChatContent) {
	switch c := content.(type) {
	case w3gs.RoomStats:
		logger.Info().Str("at", clock).
			Str("name", c.Stats.Name).
			Int("points", c.Stats.Points).
			Int("games", c.Stats.Games).
			Int("winrate", c.Stats.WinRatePercent).
			Int("disconnects", c.Stats.DisconnectPercent).
			Msg("room stats")
	case w3gs.PointsResponse:
		logger.Info().Str("at", clock).Int("entries", len(c.Entries)).Msg("points listing")
	case w3gs.ChatMessage:
		logger.Info().Str("at", clock).Uint8("sender", c.SenderID).Str("text", c.Text).Msg("chat")
	}
}

func printDevices() error {
	devices, err := capture.Devices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		line := d.Name
		if d.Description != "" {
			line += "  (" + d.Description + ")"
		}
		fmt.Println(line)
		for _, addr := range d.Addresses {
			fmt.Println("    " + addr)
		}
	}
	return nil
}
