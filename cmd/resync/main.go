// Command resync re-runs reference synchronization over stored completed
// records, for use after a posture or rule change. Rows whose record or
// warnings changed are rewritten and get a resynced audit entry.
// Usage: go run ./cmd/resync
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"coverscan/internal/appform"
	"coverscan/internal/config"
	"coverscan/internal/domain"
	"coverscan/internal/reconcile"
	"coverscan/internal/repository/postgres"
	"coverscan/internal/validator"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	subRepo := postgres.NewSubmissionRepo(db)
	auditRepo := postgres.NewSubmissionAuditRepo(db)
	checker := validator.NewEngine(validator.DefaultRegistry())

	opts := reconcile.Options{
		AutoCreateDeductibles:     cfg.Sync.AutoCreateDeductibles,
		RemoveOrphanedDeductibles: cfg.Sync.RemoveOrphanedDeductibles,
		RemoveOrphanedLienholders: cfg.Sync.RemoveOrphanedLienholders,
		ClearOrphanedDriverRefs:   cfg.Sync.ClearOrphanedDriverRefs,
	}

	ctx := context.Background()
	offset := 0
	scanned, rewritten, flagged := 0, 0, 0

	for {
		subs, err := subRepo.ListCompleted(ctx, offset, batchSize)
		if err != nil {
			return fmt.Errorf("listing completed submissions at offset %d: %w", offset, err)
		}
		if len(subs) == 0 {
			break
		}

		for i := range subs {
			sub := &subs[i]
			scanned++

			var rec appform.Record
			if err := json.Unmarshal(sub.RecordData, &rec); err != nil {
				log.Printf("WARN: skipping submission %s: unmarshal record_data: %v", sub.ID, err)
				continue
			}

			result := reconcile.Synchronize(rec.Collections, opts)
			if n := len(checker.Check(&result.State)); n > 0 {
				flagged++
				log.Printf("submission %s: %d consistency issue(s) remain", sub.ID, n)
			}

			warnings := result.Warnings
			if warnings == nil {
				warnings = []string{}
			}
			warningsJSON, err := json.Marshal(warnings)
			if err != nil {
				log.Printf("WARN: skipping submission %s: marshal warnings: %v", sub.ID, err)
				continue
			}

			if result.Changes.Empty() && bytes.Equal(warningsJSON, sub.SyncWarnings) {
				continue
			}

			rec.Collections = result.State
			recordJSON, err := json.Marshal(&rec)
			if err != nil {
				log.Printf("WARN: skipping submission %s: marshal record: %v", sub.ID, err)
				continue
			}

			if err := subRepo.UpdateRecord(ctx, sub.TenantID, sub.ID, recordJSON, warningsJSON); err != nil {
				log.Printf("WARN: failed to rewrite submission %s: %v", sub.ID, err)
				continue
			}

			detail, _ := json.Marshal(result.Changes)
			if err := auditRepo.Create(ctx, &domain.SubmissionAuditEntry{
				TenantID:     sub.TenantID,
				SubmissionID: sub.ID,
				Action:       domain.AuditResynced,
				Detail:       string(detail),
			}); err != nil {
				log.Printf("WARN: audit entry for submission %s: %v", sub.ID, err)
			}
			rewritten++
		}

		if scanned > 0 && scanned%500 == 0 {
			log.Printf("Progress: %d submissions scanned", scanned)
		}

		offset += len(subs)
	}

	log.Printf("Resync complete: %d scanned, %d rewritten, %d with open consistency issues",
		scanned, rewritten, flagged)
	return nil
}
