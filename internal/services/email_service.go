package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendEnrollmentConfirmation(ctx context.Context, email, userName, courseTitle string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendEnrollmentConfirmation notifies a user that they were enrolled in a course
func (s *AWSSESEmailService) SendEnrollmentConfirmation(ctx context.Context, email, userName, courseTitle string) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .content { padding: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>You're enrolled!</h1>
        </div>
        <div class="content">
            <p>Hi %s,</p>
            <p>You have been enrolled in <strong>%s</strong>. Log in to start learning.</p>
        </div>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, userName, courseTitle)

	textBody := fmt.Sprintf(`Hi %s,

You have been enrolled in %s. Log in to start learning.

This is an automated message. Please do not reply to this email.
`, userName, courseTitle)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(fmt.Sprintf("Enrollment confirmed: %s", courseTitle)),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send enrollment email via SES",
			slog.String("email", email),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("enrollment email sent",
		slog.String("email", email),
		slog.String("message_id", *result.MessageId))

	return nil
}

// NoOpEmailService logs instead of sending. Used when email is disabled.
type NoOpEmailService struct {
	logger *slog.Logger
}

// NewNoOpEmailService creates an email service that only logs
func NewNoOpEmailService(logger *slog.Logger) *NoOpEmailService {
	return &NoOpEmailService{logger: logger}
}

func (s *NoOpEmailService) SendEnrollmentConfirmation(ctx context.Context, email, userName, courseTitle string) error {
	s.logger.Info("email disabled, skipping enrollment confirmation",
		slog.String("email", email),
		slog.String("course", courseTitle))
	return nil
}
