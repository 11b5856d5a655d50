// Command agent runs the market research pipeline once and exits, for
// manual runs and external schedulers (cron, CI).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/marketbrief/internal/app"
	"github.com/marketbrief/internal/config"
	"github.com/marketbrief/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	check := flag.Bool("check", false, "verify required configuration and exit")
	cfg := config.Load() // parses flags

	if *check {
		return runCheck()
	}

	logger := app.NewLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "err", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "err", err)
		return 1
	}
	defer db.Close()

	ag, err := app.BuildAgent(cfg, logger, db)
	if err != nil {
		logger.Error("build agent", "err", err)
		return 1
	}

	result, err := ag.Run(ctx)
	if err != nil {
		logger.Error("market research failed", "err", err)
		return 1
	}

	logger.Info("market research completed successfully",
		"report_id", result.ReportID,
		"report_path", result.ReportPath,
		"email_sent", result.EmailSent,
		"slack_sent", result.SlackSent,
	)
	return 0
}

// runCheck reports whether the required environment is present and exits
// non-zero when anything is missing, so deploy scripts can gate on it.
func runCheck() int {
	code := 0

	if os.Getenv("GROQ_API_KEY") != "" {
		fmt.Println("GROQ_API_KEY: Set")
	} else {
		fmt.Println("GROQ_API_KEY: Not set")
		code = 1
	}

	if os.Getenv("TO_EMAIL") != "" {
		fmt.Println("TO_EMAIL: Yes")
	} else {
		fmt.Println("TO_EMAIL: No")
		code = 1
	}

	return code
}
