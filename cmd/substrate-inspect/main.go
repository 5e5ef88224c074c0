// Command substrate-inspect is a terminal UI that tails finalized-block
// events from a Substrate-family node and shows a live feed alongside a
// periodically refreshed node-health sidebar.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"github.com/clawinfra/substrate"
	"github.com/clawinfra/substratews"
)

func main() {
	configPath := flag.String("config", "", "path to a substrate TOML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := substrate.DefaultConfig()
	if *configPath != "" {
		loaded, err := substrate.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "substrate-inspect: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bearerSecret []byte
	if cfg.Node.BearerToken != "" {
		bearerSecret = []byte(cfg.Node.BearerToken)
	}

	client, err := substratews.Dial(ctx, cfg.Node.WebSocketURL, logger, bearerSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "substrate-inspect: dial: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	metadata := substrate.NewMetadataHandle(substrate.NewStaticMetadata())

	sub, err := substrate.SubscribeFinalizedEvents[map[string]any](ctx, client, metadata)
	if err != nil {
		fmt.Fprintf(os.Stderr, "substrate-inspect: subscribe: %v\n", err)
		os.Exit(1)
	}
	defer sub.Close()

	health := &nodeHealth{}
	startHealthCron(ctx, client, health, logger)

	model := newInspectModel(health)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go pumpEvents(ctx, sub, program, logger)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "substrate-inspect: %v\n", err)
		os.Exit(1)
	}
}

// nodeHealth is refreshed by a cron job and read by the TUI's render loop.
type nodeHealth struct {
	lastCheck atomic.Value // time.Time
	finalized atomic.Value // substrate.Hash
	lastErr   atomic.Value // string
}

func startHealthCron(ctx context.Context, client *substratews.Client, health *nodeHealth, logger *slog.Logger) {
	c := cron.New()
	_, err := c.AddFunc("@every 30s", func() {
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		hash, err := client.FinalizedHead(checkCtx)
		health.lastCheck.Store(time.Now())
		if err != nil {
			health.lastErr.Store(err.Error())
			logger.Warn("health check failed", "error", err)
			return
		}
		health.lastErr.Store("")
		health.finalized.Store(hash)
	})
	if err != nil {
		logger.Error("schedule health check", "error", err)
		return
	}
	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
}

// pumpEvents forwards decoded block events into the running TUI program
// until ctx is cancelled or the subscription fails.
func pumpEvents(ctx context.Context, sub *substrate.EventSubscription[map[string]any], program *tea.Program, logger *slog.Logger) {
	for {
		ev, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("event subscription ended", "error", err)
			}
			program.Send(subscriptionEndedMsg{err: err})
			return
		}
		program.Send(blockEventMsg{blockHash: ev.BlockHash, rawLen: len(ev.Raw)})
	}
}
