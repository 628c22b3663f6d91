package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// sesAPI is the part of the SES client the notifier uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailNotifier sends messages via Amazon SES
type EmailNotifier struct {
	client    sesAPI
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewEmailNotifier loads the AWS configuration for region and creates an
// SES backed notifier
func NewEmailNotifier(ctx context.Context, awsRegion, fromEmail, fromName string, logger *zap.Logger) (*EmailNotifier, error) {
	if fromEmail == "" {
		return nil, fmt.Errorf("email notifier needs a sender address")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	logger.Info("email notifier enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return newEmailNotifier(sesv2.NewFromConfig(cfg), fromEmail, fromName, logger), nil
}

func newEmailNotifier(client sesAPI, fromEmail, fromName string, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{client: client, fromEmail: fromEmail, fromName: fromName, logger: logger}
}

// Name implements Notifier
func (n *EmailNotifier) Name() string { return "email" }

// Notify implements Notifier
func (n *EmailNotifier) Notify(ctx context.Context, to Recipient, msg Message) error {
	if to.Email == "" {
		return nil
	}

	fromAddress := n.fromEmail
	if n.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to.Email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody(to.Name, msg)),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody(to.Name, msg)),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to.Email, err)
	}
	n.logger.Debug("email sent", zap.Int64("user_id", to.UserID), zap.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

func textBody(name string, msg Message) string {
	return fmt.Sprintf("Hi %s,\n\n%s\n\n---\nThis is an automated reminder from MentorMind.\n", name, msg.Text())
}

func htmlBody(name string, msg Message) string {
	var items strings.Builder
	for _, line := range msg.Lines {
		items.WriteString("\t\t\t<li>" + html.EscapeString(line) + "</li>\n")
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.footer { margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<p>Hi %s,</p>
		<ul>
%s		</ul>
		<p class="footer">This is an automated reminder from MentorMind.</p>
	</div>
</body>
</html>
`, html.EscapeString(name), items.String())
}
