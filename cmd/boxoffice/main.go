package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	_ "github.com/kirinyoku/boxoffice/docs"
	"github.com/kirinyoku/boxoffice/internal/app"
	"github.com/kirinyoku/boxoffice/internal/config"
)

// @title Box Office API
// @version 1.0
// @description In-memory event and ticket record store.
// @host localhost:8080
// @BasePath /
func main() {
	menuMode := pflag.Bool("menu", false, "run the interactive text menu on stdin/stdout instead of the HTTP server")
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	pflag.Parse()

	cfg, err := config.New(*envFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// the menu owns stdout, so logs go to stderr there
	logOut := os.Stdout
	if *menuMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Log.Level}))

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if *menuMode {
		err = application.RunMenu(context.Background(), os.Stdin, os.Stdout)
	} else {
		err = application.Run(context.Background())
	}
	if err != nil {
		logger.Error("application finished with error", "error", err)
		os.Exit(1)
	}
}
