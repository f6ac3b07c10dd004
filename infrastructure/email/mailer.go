package email

import (
	"context"
	"fmt"

	"communityapp/application/ports"
	apperrors "communityapp/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// MailerConfig selects and configures the outbound email provider.
// Provider "ses" uses AWS SES; "noop" or anything unknown logs instead of
// sending, which keeps development environments quiet.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
}

// NewMailer builds a ports.Mailer from config.
func NewMailer(cfg MailerConfig, awsCfg aws.Config, logger *zap.Logger) ports.Mailer {
	switch cfg.Provider {
	case "ses":
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: cfg.FromAddress,
			fromName:    cfg.FromName,
			logger:      logger,
		}
	case "noop":
		return &noopMailer{logger: logger}
	default:
		logger.Warn("Unknown email provider, using noop", zap.String("provider", cfg.Provider))
		return &noopMailer{logger: logger}
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

func (m *sesMailer) Send(ctx context.Context, to, subject, body string) error {
	source := m.fromAddress
	if m.fromName != "" {
		source = fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return apperrors.NewDeliveryError("failed to send email via SES").WithCause(err)
	}

	m.logger.Debug("Email sent via SES",
		zap.String("recipient", to),
		zap.String("messageID", aws.ToString(result.MessageId)),
	)
	return nil
}

type noopMailer struct {
	logger *zap.Logger
}

func (m *noopMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("Email would be sent (noop)",
		zap.String("recipient", to),
		zap.String("subject", subject),
	)
	return nil
}
