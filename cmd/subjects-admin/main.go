package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/client"
	"github.com/stemsi/class-subjects/internal/config"
	"github.com/stemsi/class-subjects/internal/form"
	"github.com/stemsi/class-subjects/internal/logger"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// Keep log lines off the console unless asked for.
	log := logger.SetupWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if os.Getenv("LOG_LEVEL") == "" {
		log = log.Level(zerolog.WarnLevel)
	}

	token, err := client.LoadToken(cfg.AuthToken, cfg.TokenFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load auth token")
	}

	api := client.New(cfg.APIBaseURL, token, cfg.RequestTimeout)
	c := &console{
		form: form.NewForm(api, form.Options{ResetDelay: cfg.ResetDelay, Log: log}),
		api:  api,
		out:  os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("Class subjects admin (%s)\n", cfg.APIBaseURL)
		fmt.Println(`Type "help" for commands.`)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		if interactive {
			fmt.Print("> ")
		}
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !c.exec(ctx, line) {
				return
			}
		}
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
