package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"wordarcade/internal/models"
)

// SESClient is the part of the SES v2 client the email service calls
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     SESClient
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *slog.Logger
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *slog.Logger) (*EmailService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	logger.Debug("initializing email service", "region", awsRegion, "from", fromEmail, "base_url", appBaseURL)

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled", "from", fromEmail, "region", awsRegion)
	return NewEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, logger), nil
}

// NewEmailServiceWithClient creates an enabled service around an existing client
func NewEmailServiceWithClient(client SESClient, fromEmail, fromName, appBaseURL string, logger *slog.Logger) *EmailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendDethronedEmail tells a player that someone has taken their top score
// in a leaderboard bucket.
func (s *EmailService) SendDethronedEmail(ctx context.Context, toEmail, toName string, game models.GameKind, bucket models.Bucket, newScore int) error {
	if !s.enabled {
		s.logger.Debug("skipping email send (service disabled)", "kind", "dethroned", "to", toEmail)
		return nil
	}

	boardLink := fmt.Sprintf("%s/api/leaderboards/%s/%s", s.appBaseURL, game, bucket)
	gameName := gameTitle(game)

	subject := fmt.Sprintf("Your %s record has been beaten", gameName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #e2574a; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #e2574a; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>You've been dethroned!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Another player just scored <strong>%d</strong> in %s (%s) and took the top spot from you.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">See the Leaderboard</a>
			</p>
			<p>Think you can win it back?</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Word Arcade. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(toName), newScore, gameName, bucket, boardLink)

	textBody := fmt.Sprintf(`Hi %s,

Another player just scored %d in %s (%s) and took the top spot from you.

See the leaderboard: %s

Think you can win it back?

---
This is an automated email from Word Arcade. Please do not reply.
`, toName, newScore, gameName, bucket, boardLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	attrs := []any{"to", toEmail, "subject", subject}
	if result != nil && result.MessageId != nil {
		attrs = append(attrs, "message_id", *result.MessageId)
	}
	s.logger.Info("email sent", attrs...)
	return nil
}

func gameTitle(game models.GameKind) string {
	switch game {
	case models.GameFallingWords:
		return "Falling Words"
	case models.GameConjugation:
		return "Verb Conjugation"
	case models.GameWordGuess:
		return "Word Guess"
	}
	return string(game)
}
