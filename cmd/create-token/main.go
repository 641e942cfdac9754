package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/class-subjects/internal/client"
	"github.com/stemsi/class-subjects/internal/config"
	"github.com/stemsi/class-subjects/internal/logger"
	"github.com/stemsi/class-subjects/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	var (
		operator  string
		output    string
		printOnly bool
	)
	flag.StringVar(&operator, "operator", "", "Name recorded as the token subject")
	flag.StringVar(&output, "out", cfg.TokenFile, "File the admin console reads its token from")
	flag.BoolVar(&printOnly, "print", false, "Print the token instead of saving it")
	flag.Parse()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Issue Admin Token ===")

	if operator == "" {
		fmt.Print("Enter Operator Name: ")
		line, _ := reader.ReadString('\n')
		operator = strings.TrimSpace(line)
	}
	if operator == "" {
		fmt.Println("Error: Operator name is required")
		return
	}

	// Secret: JWT_SECRET from env/.env, or typed without echo.
	if os.Getenv("JWT_SECRET") == "" && term.IsTerminal(int(syscall.Stdin)) {
		fmt.Print("Enter JWT Secret (empty keeps default): ")
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Println("Error reading secret")
			return
		}
		if s := strings.TrimSpace(string(secret)); s != "" {
			cfg.JWTSecret = s
		}
	}

	authService := service.NewAuthService(cfg)
	token, err := authService.GenerateAdminToken(operator)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	if printOnly {
		fmt.Println(token)
		return
	}

	if err := client.SaveToken(output, token); err != nil {
		log.Fatal().Err(err).Msg("Failed to save token")
	}
	fmt.Printf("Token for %q saved to %s (expires in %s)\n", operator, output, cfg.JWTExpiry)
}
