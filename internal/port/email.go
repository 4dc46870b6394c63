package port

import (
	"context"

	"coverscan/internal/domain"
)

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	// SendSubmissionReceipt confirms a final submission to the submitting user.
	SendSubmissionReceipt(ctx context.Context, toEmail, toName string, sub *domain.Submission) error
}
