package igdb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"questlog/internal/models"
)

type gameFetcher interface {
	FetchGameByID(ctx context.Context, id int64) (*models.GameDocument, error)
}

// Importer fetches many games concurrently. The client's rate limiter still
// bounds the request rate.
type Importer struct {
	client  gameFetcher
	workers int
	logger  *slog.Logger
}

func NewImporter(client gameFetcher, workers int, logger *slog.Logger) *Importer {
	return &Importer{client: client, workers: workers, logger: logger}
}

// FetchAll returns the documents found, in the order of ids, and an error per id
// that could not be fetched. Duplicate ids are fetched once.
func (im *Importer) FetchAll(ctx context.Context, ids []int64) ([]*models.GameDocument, map[int64]error) {
	var (
		mu    sync.Mutex
		found = make(map[int64]*models.GameDocument, len(ids))
		errs  = make(map[int64]error)
	)

	pool := NewWorkerPool(ctx, im.workers, im.logger)
	pool.Start()

	seen := make(map[int64]bool, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	for _, id := range unique {
		ok := pool.Submit(func(ctx context.Context) error {
			doc, err := im.client.FetchGameByID(ctx, id)
			if err == nil && doc == nil {
				err = models.ErrMetadataNotFound
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[id] = err
				return fmt.Errorf("game %d: %w", id, err)
			}
			found[id] = doc
			return nil
		})
		if !ok {
			break
		}
	}
	stats := pool.Wait()
	im.logger.Debug("Batch fetch finished", "requested", len(unique), "fetched", stats.Completed, "failed", stats.Failed, "dropped", stats.Dropped)

	// ids whose task was never run or panicked have no outcome yet
	for _, id := range unique {
		if _, done := found[id]; done {
			continue
		}
		if _, failed := errs[id]; failed {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs[id] = err
		} else {
			errs[id] = fmt.Errorf("game %d: fetch did not complete", id)
		}
	}

	docs := make([]*models.GameDocument, 0, len(found))
	for _, id := range ids {
		if doc, ok := found[id]; ok {
			docs = append(docs, doc)
			delete(found, id)
		}
	}
	return docs, errs
}
