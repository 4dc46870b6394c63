package noop

import (
	"context"
	"log"

	"coverscan/internal/domain"
	"coverscan/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs receipts to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendSubmissionReceipt(_ context.Context, toEmail, toName string, sub *domain.Submission) error {
	log.Printf("[NOOP EMAIL] Submission receipt for %s (%s): submission %s (%s, %d page(s))",
		toName, toEmail, sub.ID, sub.FormType, sub.PageCount)
	return nil
}
