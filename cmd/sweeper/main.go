// Command sweeper removes upload files no longer referenced by any hotel.
// Attach aborts leave partially copied files behind, and neither crash-time
// deletes nor best-effort cascade removals are guaranteed; one sweep pass
// reclaims all of it. Scheduling is external (cron).
package main

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tutelo/internal/adapters/observability"
	"tutelo/internal/shared"
	mysqlrepo "tutelo/internal/storage/mysql"
	"tutelo/internal/storage/uploads"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().
		Int("workers", cfg.SweepWorkers).
		Dur("min_age", cfg.SweepMinAge).
		Msg("sweeper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	store, err := uploads.New(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("uploads store init failed")
	}

	referenced, err := referencedURLs(ctx, mysqlrepo.New(db))
	if err != nil {
		log.Fatal().Err(err).Msg("load referenced image urls failed")
	}

	files, err := store.Files()
	if err != nil {
		log.Fatal().Err(err).Msg("list uploads failed")
	}

	cutoff := time.Now().Add(-cfg.SweepMinAge)
	sem := semaphore.NewWeighted(int64(cfg.SweepWorkers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	removed := 0

	for _, f := range files {
		if _, ok := referenced[f.URL]; ok {
			continue
		}
		// Young files may belong to an in-flight attach; skip them.
		if f.ModTime.After(cutoff) {
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func(f uploads.FileInfo) {
			defer wg.Done()
			defer sem.Release(1)

			if err := store.Remove(f.URL); err != nil {
				log.Warn().Str("file", f.Name).Err(err).Msg("sweep remove failed")
				return
			}
			mu.Lock()
			removed++
			mu.Unlock()
			log.Info().Str("file", f.Name).Msg("swept orphaned upload")
		}(f)
	}

	wg.Wait()
	observability.ObserveImages("sweep", removed)
	log.Info().Int("scanned", len(files)).Int("removed", removed).Msg("sweep completed")
}

// referencedURLs collects every image URL any hotel still points at.
func referencedURLs(ctx context.Context, repo *mysqlrepo.Repo) (map[string]struct{}, error) {
	hotels, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	for _, h := range hotels {
		for _, u := range h.ImageURLs {
			out[u] = struct{}{}
		}
	}
	return out, nil
}
