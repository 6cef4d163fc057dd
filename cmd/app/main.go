package main

import (
	"context"
	"flag"
	"log"
	"os"

	"RentPredict/internal/di"
	"RentPredict/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if os.Getenv(cfg.Model.TokenEnv) == "" && cfg.Model.Token == "" {
		log.Printf("warning: %s is not set; model calls will be unauthenticated", cfg.Model.TokenEnv)
	}
	log.Printf("env=%s space=%s audit=%s", cfg.Environment, cfg.Model.Space, cfg.Audit.Backend)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	runErr := app.Run(context.Background())
	cleanup()
	if runErr != nil {
		log.Printf("app error: %v", runErr)
		os.Exit(1)
	}
}
