// import-trackers is the administrative entry point that pulls the ETIP
// Exodus Privacy tracker list and folds new detectors into the kit
// pattern catalog. Run it offline: the append races with catalog reads
// by an analyzing service, so imports are serialized against analysis
// operationally.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/apk-metadata/apk-metadata-go/internal/catalog"
	"github.com/apk-metadata/apk-metadata-go/internal/config"
	"github.com/apk-metadata/apk-metadata-go/internal/tracker"
)

func main() {
	configPath := "./configs/config.yaml"
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		configPath = os.Args[2]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := config.InitLogger(&cfg.Log)

	loader := catalog.NewLoader(cfg.Catalogs.Smali, cfg.Catalogs.Wide, cfg.Catalogs.Arm, cfg.Catalogs.Kit)
	feed := tracker.NewFeedClient(cfg.Tracker.FeedURL, time.Duration(cfg.Tracker.Timeout)*time.Second, logger)
	importer := tracker.NewImporter(feed, loader, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := importer.ImportAndMerge(ctx)
	if err != nil {
		logger.Fatalf("Tracker import failed: %v", err)
	}

	logger.Infof("Imported %d new trackers out of %d fetched", result.Added, result.Fetched)
}
