package acquire

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/mailtm"
	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/otp"
)

// MailboxClient is the slice of the mailbox API the orchestrator needs.
type MailboxClient interface {
	ListMessages(ctx context.Context, session *mailtm.Session) ([]mailtm.Message, error)
	FetchBody(ctx context.Context, session *mailtm.Session, messageID string) (string, error)
}

// MailboxAcquirer polls a disposable mailbox for the verification mail.
type MailboxAcquirer struct {
	client MailboxClient
	logger *zap.Logger
}

func NewMailboxAcquirer(client MailboxClient, logger *zap.Logger) *MailboxAcquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailboxAcquirer{client: client, logger: logger.Named("mailbox")}
}

// WaitForNewMessage polls the inbox until its newest message id differs from
// previousID. The provider's inbox is small and newest-first, so only index
// 0 is inspected. Transport errors surface immediately; exhausting
// maxAttempts yields a *TimeoutError.
func (a *MailboxAcquirer) WaitForNewMessage(ctx context.Context, session *mailtm.Session, previousID string, maxAttempts int, interval time.Duration) (mailtm.Message, error) {
	var found mailtm.Message

	err := pollUntil(ctx, interval, maxAttempts, time.Time{}, func() (bool, error) {
		messages, err := a.client.ListMessages(ctx, session)
		if err != nil {
			return false, err
		}
		if len(messages) > 0 && messages[0].ID != previousID {
			found = messages[0]
			return true, nil
		}
		a.logger.Debug("no new message yet", zap.Int("inbox_size", len(messages)))
		return false, nil
	})

	if errors.Is(err, errExhausted) {
		return mailtm.Message{}, &TimeoutError{
			Channel:  "mailbox",
			Attempts: maxAttempts,
			Waited:   time.Duration(maxAttempts) * interval,
		}
	}
	if err != nil {
		return mailtm.Message{}, err
	}

	a.logger.Info("new message arrived",
		zap.String("id", found.ID),
		zap.String("from", found.From.Address),
		zap.String("subject", found.Subject))
	return found, nil
}

// AcquireOTP waits for a message beyond previousID, fetches its body and
// extracts the 6-digit code. A body with no code is an *ExtractionError and
// is not retried.
func (a *MailboxAcquirer) AcquireOTP(ctx context.Context, session *mailtm.Session, previousID string, maxAttempts int, interval time.Duration) (string, mailtm.Message, error) {
	msg, err := a.WaitForNewMessage(ctx, session, previousID, maxAttempts, interval)
	if err != nil {
		return "", mailtm.Message{}, err
	}

	body, err := a.client.FetchBody(ctx, session, msg.ID)
	if err != nil {
		return "", msg, err
	}

	code := otp.ExtractSixDigitCode(body)
	if code == "" {
		return "", msg, &ExtractionError{MessageID: msg.ID}
	}

	a.logger.Info("extracted mailbox OTP", zap.String("message_id", msg.ID))
	return code, msg, nil
}
