package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"coverscan/internal/domain"
	"coverscan/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendSubmissionReceipt(ctx context.Context, toEmail, toName string, sub *domain.Submission) error {
	submissionURL := fmt.Sprintf("%s/submissions/%s", s.frontendURL, sub.ID)
	submittedAt := ""
	if sub.SubmittedAt != nil {
		submittedAt = sub.SubmittedAt.Format("January 2, 2006 at 15:04 MST")
	}

	subject := fmt.Sprintf("CoverScan submission received (%s application)", sub.FormType)
	htmlBody := buildReceiptHTML(toName, string(sub.FormType), sub.PageCount, submittedAt, submissionURL)
	textBody := fmt.Sprintf("Hi %s,\n\nYour %s insurance application (%d page(s)) was submitted on %s.\n\nYou can review it at:\n%s\n\nCoverScan Team",
		toName, sub.FormType, sub.PageCount, submittedAt, submissionURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReceiptHTML(name, formType string, pageCount int, submittedAt, submissionURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Submission received</h2>
  <p>Hi %s,</p>
  <p>Your %s insurance application (%d page(s)) was submitted on %s.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Submission</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">CoverScan - Application Intake Platform</p>
</body>
</html>`, name, formType, pageCount, submittedAt, submissionURL, submissionURL)
}
