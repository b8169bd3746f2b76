package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"batch-release/internal/config"
	"batch-release/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	var configPath, envFile string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "path to the configuration file (shorthand)")
	flag.StringVar(&envFile, "env-file", ".env", "optional dotenv file with BATCH_RELEASE_* overrides")
	flag.Parse()

	// Real environment variables win over the dotenv file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load %s: %v", envFile, err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	if err := srv.Start(); err != nil {
		log.Printf("server exited with error: %v", err)
		os.Exit(1)
	}
}
