package service

import (
	"context"
	"log"
	"sync"
	"time"

	"coverscan/internal/port"
)

// ProcessQueueConfig holds settings for the processing queue worker.
type ProcessQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
}

// ProcessQueueWorker polls for rate-limit-queued submissions and dispatches
// them back through the recognition pipeline. Claiming flips a row to
// processing atomically, so multiple instances can run side by side.
type ProcessQueueWorker struct {
	subRepo    port.SubmissionRepository
	subService SubmissionService
	cfg        ProcessQueueConfig
	wg         sync.WaitGroup
}

// NewProcessQueueWorker creates a new ProcessQueueWorker.
func NewProcessQueueWorker(subRepo port.SubmissionRepository, subService SubmissionService, cfg ProcessQueueConfig) *ProcessQueueWorker {
	return &ProcessQueueWorker{
		subRepo:    subRepo,
		subService: subService,
		cfg:        cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight processing goroutines have finished.
func (w *ProcessQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("processQueueWorker: started (poll=%s, concurrency=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("processQueueWorker: shutting down, waiting for in-flight submissions...")
			w.wg.Wait()
			log.Printf("processQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			subs, err := w.subRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll — exit gracefully
					continue
				}
				log.Printf("processQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range subs {
				sub := subs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight submissions complete even during shutdown.
					procCtx, cancel := context.WithTimeout(context.Background(), processTimeout)
					defer cancel()

					log.Printf("processQueueWorker: dispatching submission %s (retry %d)", sub.ID, sub.RetryCount)
					w.subService.ProcessSubmission(procCtx, &sub)
				}()
			}
		}
	}
}
