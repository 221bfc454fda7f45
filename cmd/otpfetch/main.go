// otpfetch acquires a one-time passcode from a disposable mailbox or a
// public SMS inbox page and prints it, recording every attempt in a local
// audit log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/acquire"
	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/browser"
	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/config"
	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/mailtm"
	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/smsinbox"
	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/store"
)

func main() {
	channel := flag.String("channel", "mailbox", "acquisition channel: mailbox or sms")
	provision := flag.Bool("provision", false, "provision a fresh disposable mailbox before acquiring")
	stats := flag.Bool("stats", false, "print the acquisition audit log and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer db.Close()

	if *stats {
		showStats(db)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AcquireTimeout+30*time.Second)
	defer cancel()

	started := time.Now()
	var code string
	switch *channel {
	case "mailbox":
		code, err = runMailbox(ctx, cfg, db, logger, *provision)
	case "sms":
		code, err = runSMS(ctx, cfg, logger)
	default:
		log.Fatalf("❌ unknown channel %q", *channel)
	}

	if _, recErr := db.RecordAcquisition(*channel, code, err == nil, errorKind(err), started, time.Since(started)); recErr != nil {
		logger.Warn("audit log write failed", zap.Error(recErr))
	}

	if err != nil {
		logger.Error("acquisition failed", zap.String("channel", *channel), zap.Error(err))
		fmt.Printf("❌ acquisition failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("🔐 OTP: %s\n", code)
}

func runMailbox(ctx context.Context, cfg config.Config, db *store.Store, logger *zap.Logger, provision bool) (string, error) {
	if err := cfg.ValidateMailbox(provision); err != nil {
		return "", err
	}

	client := mailtm.New(cfg.MailboxBaseURL, logger)

	var session *mailtm.Session
	var address string
	if provision {
		account, err := client.ProvisionAccount(ctx)
		if err != nil {
			return "", err
		}
		if _, err := db.SaveMailAccount(account.Address, account.Password); err != nil {
			logger.Warn("could not persist provisioned mailbox", zap.Error(err))
		}
		fmt.Printf("📧 provisioned mailbox: %s\n", account.Address)
		session = account.Session
		address = account.Address
	} else {
		var err error
		session, err = client.Login(ctx, cfg.MailboxAddress, cfg.MailboxPassword)
		if err != nil {
			return "", err
		}
		address = cfg.MailboxAddress
	}

	// Baseline: the acquisition succeeds only on a message beyond the
	// newest id known right now.
	previousID := ""
	if messages, err := client.ListMessages(ctx, session); err != nil {
		return "", err
	} else if len(messages) > 0 {
		previousID = messages[0].ID
	}

	maxAttempts := int(cfg.AcquireTimeout / cfg.PollInterval)
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	acquirer := acquire.NewMailboxAcquirer(client, logger)
	code, msg, err := acquirer.AcquireOTP(ctx, session, previousID, maxAttempts, cfg.PollInterval)
	if err != nil {
		return "", err
	}

	if err := db.TouchMailAccount(address); err != nil {
		logger.Warn("could not mark mailbox as used", zap.Error(err))
	}
	logger.Info("mailbox acquisition complete",
		zap.String("message_id", msg.ID),
		zap.String("from", msg.From.Address))
	return code, nil
}

func runSMS(ctx context.Context, cfg config.Config, logger *zap.Logger) (string, error) {
	if err := cfg.ValidateSMS(); err != nil {
		return "", err
	}

	session, err := browser.Launch(cfg.Headless, logger)
	if err != nil {
		return "", err
	}
	defer session.Close()

	scraper := smsinbox.NewScraper(logger)
	acquirer := acquire.NewSMSAcquirer(scraper, cfg.TargetPhone, cfg.PollInterval, logger)

	deadline := time.Now().Add(cfg.AcquireTimeout)
	return acquirer.WaitForOTP(ctx, session.Page, cfg.SMSInboxURL, deadline)
}

func showStats(db *store.Store) {
	total, succeeded, err := db.CountAcquisitions()
	if err != nil {
		log.Fatalf("❌ stats: %v", err)
	}
	fmt.Printf("📊 acquisitions: %d total, %d succeeded\n", total, succeeded)

	recent, err := db.RecentAcquisitions(10)
	if err != nil {
		log.Fatalf("❌ stats: %v", err)
	}
	for _, a := range recent {
		status := "✅"
		if !a.Succeeded {
			status = fmt.Sprintf("❌ (%s)", a.ErrorKind)
		}
		fmt.Printf("  %s  %-7s  %s  %dms  %s\n",
			a.StartedAt.Format("2006-01-02 15:04:05"), a.Channel, status, a.DurationMS, a.OTP)
	}
}

// errorKind maps an acquisition failure onto the audit log's error taxonomy.
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		authErr       *mailtm.AuthError
		transportErr  *mailtm.TransportError
		timeoutErr    *acquire.TimeoutError
		extractionErr *acquire.ExtractionError
	)
	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &extractionErr):
		return "extraction"
	default:
		return "other"
	}
}
