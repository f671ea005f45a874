package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/slackadder/internal/config"
	"github.com/nextlevelbuilder/slackadder/internal/groups"
	"github.com/nextlevelbuilder/slackadder/internal/slack"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment, credentials, and channel groups health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("slackadder doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	if err := godotenv.Load(); err == nil {
		fmt.Println("  .env:     loaded")
	} else {
		fmt.Println("  .env:     not found (relying on exported environment)")
	}

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, env vars only)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Println()
	fmt.Println("  Credentials:")
	printCheck("SLACK_BOT_TOKEN", cfg.Slack.BotToken != "")
	printCheck("SLACK_APP_TOKEN", cfg.Slack.AppToken != "")

	fmt.Println()
	fmt.Printf("  Groups file: %s", cfg.GroupsFile)
	defs, err := groups.Load(cfg.GroupsFile)
	switch {
	case err != nil:
		fmt.Printf(" (INVALID: %s)\n", err)
	case defs.Len() == 0:
		fmt.Println(" (no groups defined)")
	default:
		fmt.Printf(" (%d groups)\n", defs.Len())
	}

	if cfg.Slack.BotToken == "" {
		return
	}

	fmt.Println()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := slack.NewClient(cfg.Slack.BotToken)
	identity, err := client.AuthTest(ctx)
	if err != nil {
		fmt.Printf("  auth.test: FAILED (%s)\n", err)
		return
	}
	fmt.Printf("  auth.test: OK (bot user %s, team %s)\n", identity.UserID, identity.Team)

	if identity.EnterpriseID != "" && identity.TeamID == "" && len(cfg.AllowList()) == 0 {
		fmt.Println("  WARNING: org-level install without ALLOWED_USERS, the bot will refuse to start")
	}
}

func printCheck(name string, ok bool) {
	if ok {
		fmt.Printf("    %-18s set\n", name+":")
	} else {
		fmt.Printf("    %-18s MISSING\n", name+":")
	}
}
