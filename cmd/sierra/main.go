// Command sierra runs the Sierra Outfitters customer service agent as
// an interactive chat: a full-screen terminal UI by default, or a
// plain line REPL with -plain for piped and scripted use.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sierra-outfitters/sierra-agent/internal/agent"
	"github.com/sierra-outfitters/sierra-agent/internal/config"
	"github.com/sierra-outfitters/sierra-agent/internal/stats"
)

const (
	welcomeMessage = "🏔️  Welcome to Sierra Outfitters Customer Service! 🏔️"
	exitMessage    = "\nThanks for choosing Sierra Outfitters! Onward into the unknown! 🏔️"
)

// assistant is the slice of the agent both shells drive.
type assistant interface {
	ProcessMessage(ctx context.Context, text string) string
	ResetConversation()
	Stats() stats.Stats
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "sierra.toml", "path to the TOML config file")
	plain := flag.Bool("plain", false, "line REPL on stdin/stdout instead of the terminal UI")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("❌ Configuration error:", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("❌ Configuration error:", err)
		fmt.Println("Set OPENAI_API_KEY in the environment (or ANTHROPIC_API_KEY with llm.provider = \"anthropic\").")
		return 1
	}

	logger, closeLog, err := newLogger(cfg.Logging, !*plain)
	if err != nil {
		fmt.Println("❌ Logging error:", err)
		return 1
	}
	defer closeLog()

	sierra, err := agent.NewSierra(cfg, logger)
	if err != nil {
		fmt.Println("❌ Startup error:", err)
		return 1
	}
	defer sierra.Close()

	if *plain {
		return runREPL(sierra)
	}
	return runTUI(sierra)
}

// newLogger builds the session logger from the logging config. The
// terminal UI owns the screen, so without a configured log file its
// logs are dropped rather than scribbled over the display.
func newLogger(cfg config.LoggingConfig, fullScreen bool) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeLog := func() {}

	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeLog = func() { f.Close() }
	case fullScreen:
		w = io.Discard
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	return slog.New(handler), closeLog, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// formatStats renders a usage snapshot for the /stats command in both
// shells.
func formatStats(snap stats.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session uptime:  %s\n", snap.Uptime.Round(time.Second))
	fmt.Fprintf(&b, "Model requests:  %d\n", snap.RequestCount)
	fmt.Fprintf(&b, "Tokens used:     %d\n", snap.TokenCount)
	fmt.Fprintf(&b, "Errors:          %d\n", snap.ErrorCount)
	fmt.Fprintf(&b, "Avg latency:     %.0f ms", snap.AvgLatencyMs)
	return b.String()
}
