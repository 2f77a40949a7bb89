package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"chatka/config"
	"chatka/ui"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	// The terminal belongs to the UI; logs go to a file.
	zcfg.OutputPaths = []string{cfg.LogPath}
	zcfg.ErrorOutputPaths = []string{cfg.LogPath}
	return zcfg.Build()
}

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	user := flag.String("user", "", "username to sign in as")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *user != "" {
		cfg.Username = *user
	}
	if cfg.Username == "" {
		fmt.Fprintln(os.Stderr, "Error: username required (-user or config)")
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	app := ui.NewApp(cfg, log)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
