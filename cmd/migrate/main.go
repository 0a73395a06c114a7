package main

import (
	"fmt"
	"log"
	"os"

	"github.com/apk-metadata/apk-metadata-go/internal/config"
	"github.com/apk-metadata/apk-metadata-go/internal/repository"
)

func main() {
	configPath := "./configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := config.InitLogger(&cfg.Log)

	if _, err := repository.InitDB(&cfg.Database, logger); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	fmt.Println("Migration completed successfully")
}
