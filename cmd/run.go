package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nextlevelbuilder/slackadder/internal/bot"
	"github.com/nextlevelbuilder/slackadder/internal/bus"
	"github.com/nextlevelbuilder/slackadder/internal/config"
	"github.com/nextlevelbuilder/slackadder/internal/slack"
)

// inboundBuffer sizes the mention-event queue between the Socket Mode
// listener and the command consumers.
const inboundBuffer = 64

func runBot() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// .env is optional; deployed environments export the vars directly.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Slack.BotToken == "" {
		slog.Error("SLACK_BOT_TOKEN must be set")
		os.Exit(1)
	}
	if cfg.Slack.AppToken == "" {
		slog.Error("SLACK_APP_TOKEN must be set (Socket Mode)")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := slack.NewClient(cfg.Slack.BotToken)

	identity, err := client.AuthTest(ctx)
	if err != nil {
		slog.Error("failed to verify bot credentials", "error", err)
		os.Exit(1)
	}

	allowList := cfg.AllowList()

	// Org-level installs see no workspace team; without an allow-list the
	// bot would accept commands from any user in any workspace.
	if identity.EnterpriseID != "" && identity.TeamID == "" && len(allowList) == 0 {
		slog.Error("ALLOWED_USERS must be set (comma-separated user IDs) when running as an org-level app")
		os.Exit(1)
	}

	slog.Info("slackadder starting",
		"bot_user", identity.UserID,
		"team", identity.Team,
		"groups_file", cfg.GroupsFile,
		"allow_list", len(allowList),
	)

	msgBus := bus.New(inboundBuffer)
	b := bot.New(identity.UserID, client, client, allowList, cfg.GroupsFile)

	listener := slack.NewSocketMode(cfg.Slack.AppToken, msgBus)
	if err := listener.Start(ctx); err != nil {
		slog.Error("failed to start socket mode listener", "error", err)
		os.Exit(1)
	}

	// One goroutine per event: a rate-limit sleep inside one command must
	// not delay unrelated events.
	for {
		ev, ok := msgBus.ConsumeInbound(ctx)
		if !ok {
			break
		}
		go b.HandleMention(ctx, ev)
	}

	slog.Info("shutting down")
	_ = listener.Stop(context.Background())
}
