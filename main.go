package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"cyvat/cmd"
	"cyvat/internal/config"
	"cyvat/internal/logger"
)

func main() {
	// A missing .env is normal; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting cyvat")

	cmd.Execute()

	log.Debug().Msg("cyvat finished")
}
