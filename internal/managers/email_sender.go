package managers

import (
	"context"
	"fmt"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/resend/resend-go/v2"
)

type resendEmailSender struct {
	client *resend.Client
	from   string
}

// NewResendEmailSender builds the email channel sender. With an empty API key
// the sender reports unconfigured and the dispatcher records email deliveries
// as pending.
func NewResendEmailSender(apiKey string, from string) domain.EmailSender {
	sender := &resendEmailSender{
		from: from,
	}

	if apiKey != "" {
		sender.client = resend.NewClient(apiKey)
	}

	return sender
}

func (s *resendEmailSender) Configured() bool {
	return s.client != nil && s.from != ""
}

func (s *resendEmailSender) Send(ctx context.Context, params domain.SendEmailParams) error {
	if !s.Configured() {
		return fmt.Errorf("email sender is not configured")
	}

	request := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{params.To},
		Subject: params.Subject,
		Text:    params.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, request); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
