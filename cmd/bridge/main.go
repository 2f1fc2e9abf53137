// cmd/bridge/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ticket-bridge/internal/bridge"
	"ticket-bridge/internal/common/config"
	"ticket-bridge/internal/common/database"
	"ticket-bridge/internal/common/logger"
	"ticket-bridge/internal/discord"
	"ticket-bridge/internal/notion"
	"ticket-bridge/internal/store"
	"ticket-bridge/internal/ticket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := logger.New("info", "console")
		bootstrap.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	records := notion.NewClient(cfg.Notion.Token, cfg.Notion.DatabaseID, cfg.Notion.BaseURL)

	// `bridge init` provisions the remote database schema and exits.
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := records.ProvisionDatabase(context.Background()); err != nil {
			zapLog.Fatal("database provisioning failed", zap.Error(err))
		}
		zapLog.Info("provisioned notion database", zap.String("databaseId", cfg.Notion.DatabaseID))
		return
	}

	zapLog.Info("starting ticket bridge...")

	ctx := context.Background()

	classifier, err := ticket.NewClassifier(cfg.Discord.OpenRegex, cfg.Discord.ClosedRegex)
	if err != nil {
		zapLog.Fatal("invalid channel name pattern", zap.Error(err))
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		zapLog.Fatal("store initialization failed", zap.Error(err))
	}
	defer closeStore()
	zapLog.Info("loaded ticket store",
		zap.String("backend", cfg.Store.Backend),
		zap.Int("tickets", st.Len()),
	)

	b := bridge.New(&bridge.Config{
		TicketBotID:    cfg.Discord.TicketBotID,
		StartMarker:    cfg.Discord.StartMarker,
		ClosedByMarker: cfg.Discord.ClosedByMarker,
	}, classifier, st, records, log)

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Error("metrics server failed", zap.Error(err))
			}
		}()
		zapLog.Info("metrics endpoint listening", zap.String("address", cfg.Metrics.Address))
	}

	gateway, err := discord.NewGateway(cfg.Discord.BotToken, b, log)
	if err != nil {
		zapLog.Fatal("gateway setup failed", zap.Error(err))
	}
	if err := gateway.Open(); err != nil {
		zapLog.Fatal("gateway connection failed", zap.Error(err))
	}
	defer gateway.Close()

	zapLog.Info("ticket bridge running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down")
}

// openStore builds the configured persistence backend and returns it along
// with a closer for the backing client, if any.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "file":
		st, err := store.NewFileStore(cfg.Store.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil

	case "redis":
		client, err := database.NewRedis(cfg.Store.Redis)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		st, err := store.NewRedisStore(ctx, client.GetClient(), cfg.Store.Redis.Key)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return st, func() { client.Close() }, nil

	case "postgres":
		client, err := database.NewPostgres(cfg.Store.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		st, err := store.NewPostgresStore(ctx, client.GetDB())
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return st, func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
