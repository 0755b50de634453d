package contact

import (
	"context"

	appconfig "sentimentai/voice-server/pkg/config"
	"sentimentai/voice-server/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Email is a fully rendered outbound message
type Email struct {
	To       string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends rendered emails
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// SESMailer sends through Amazon SES
type SESMailer struct {
	client *ses.Client
	from   string
	log    *logger.Logger
}

// NewSESMailer resolves AWS credentials from the environment and
// returns a mailer bound to the configured sender address.
func NewSESMailer(ctx context.Context, cfg *appconfig.Config, log *logger.Logger) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Email.Region))
	if err != nil {
		return nil, err
	}

	return &SESMailer{
		client: ses.NewFromConfig(awsCfg),
		from:   cfg.Email.From,
		log:    log,
	}, nil
}

func (m *SESMailer) Send(ctx context.Context, email *Email) error {
	input := &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(email.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(email.TextBody),
					Charset: aws.String("UTF-8"),
				},
				Html: &types.Content{
					Data:    aws.String(email.HTMLBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
	if email.ReplyTo != "" {
		input.ReplyToAddresses = []string{email.ReplyTo}
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return err
	}

	m.log.Info("Email sent", "to", email.To, "message_id", aws.ToString(out.MessageId))
	return nil
}
