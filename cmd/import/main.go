package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mira/lyrichase/internal/config"
	"github.com/mira/lyrichase/internal/domain"
	"github.com/mira/lyrichase/internal/logger"
	"github.com/mira/lyrichase/internal/repository"
	"github.com/mira/lyrichase/internal/service"
	"github.com/mira/lyrichase/internal/source"
	"github.com/mira/lyrichase/internal/source/ytmusic"
)

const pollInterval = 2 * time.Second

func main() {
	var (
		sourceID       = flag.String("source", ytmusic.SourceID, "Catalog source to harvest from")
		count          = flag.Int("count", 20, "Number of songs to import")
		language       = flag.String("language", "", "Language filter (ISO 639-1 code)")
		yearFrom       = flag.Int("year-from", 0, "Earliest release year")
		yearTo         = flag.Int("year-to", 0, "Latest release year")
		challengeCount = flag.Int("challenges-per-song", 1, "Challenges to synthesize per imported song")
		query          = flag.String("query", "", "Custom search query, overrides seeded queries")
		configPath     = flag.String("config", "", "Path to config file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      "text",
		ServiceName: "lyrichase-import",
	})
	logger.SetDefaultLogger(appLogger)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	songRepo := repository.NewSongRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	jobRepo := repository.NewJobRepository(db)

	sources := map[string]source.CatalogSource{
		ytmusic.SourceID: ytmusic.NewAdapter(&ytmusic.Config{
			BaseURL:           cfg.Catalog.BaseURL,
			Timeout:           cfg.Catalog.Timeout,
			PageSize:          cfg.Catalog.PageSize,
			MaxRetries:        cfg.Catalog.MaxRetries,
			RetryBackoff:      cfg.Catalog.RetryBackoff,
			RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		}, appLogger),
	}

	importer := service.NewImporter(songRepo, cfg.Importer.MinLyricLines)
	synthesizer := service.NewSynthesizer(challengeRepo)
	manager := service.NewManager(jobRepo, importer, synthesizer, sources, appLogger, &service.ManagerConfig{
		MaxConcurrentJobs: 1,
		JobListLimit:      cfg.Importer.JobListLimit,
	})

	ctx := context.Background()
	job, err := manager.Submit(ctx, service.JobRequest{
		Source:            *sourceID,
		Language:          *language,
		Count:             *count,
		ChallengesPerSong: *challengeCount,
		YearFrom:          *yearFrom,
		YearTo:            *yearTo,
		SearchQuery:       *query,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to submit import job")
	}

	fmt.Printf("Job %s submitted\n", job.ID)

	// Poll the ledger and stream new log entries until the job settles
	var lastSeen domain.JobLog
	for {
		time.Sleep(pollInterval)

		job, err = manager.Get(ctx, job.ID)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to poll job")
		}
		for _, entry := range newLogEntries(lastSeen, job.Log) {
			fmt.Println(entry.Message)
		}
		lastSeen = job.Log
		if job.Status.Terminal() {
			break
		}
	}

	manager.Wait()

	if job.Status != domain.JobStatusCompleted {
		os.Exit(1)
	}
}

// newLogEntries returns the entries of cur not yet seen in prev. The
// job log is append-only but bounded, so cur may have lost old entries
// from the front; anchoring on prev's newest entry keeps the stream
// aligned instead of indexing by absolute position.
func newLogEntries(prev, cur domain.JobLog) domain.JobLog {
	if len(prev) == 0 {
		return cur
	}
	anchor := prev[len(prev)-1]
	for i := len(cur) - 1; i >= 0; i-- {
		if cur[i].At.Equal(anchor.At) && cur[i].Message == anchor.Message {
			return cur[i+1:]
		}
	}
	// Anchor truncated away; everything currently retained is newer
	return cur
}
