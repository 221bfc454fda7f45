package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the surface consumed by the acquisition engine. Values come from
// the environment, optionally seeded from a .env file.
type Config struct {
	// mailbox channel
	MailboxBaseURL  string
	MailboxAddress  string
	MailboxPassword string

	// sms channel
	SMSInboxURL string
	TargetPhone string

	PollInterval   time.Duration
	AcquireTimeout time.Duration

	Headless bool
	DBPath   string
}

// Load reads the environment. A missing .env file is not an error.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		MailboxBaseURL:  getEnv("MAILBOX_BASE_URL", "https://api.mail.tm"),
		MailboxAddress:  getEnv("MAILBOX_ADDRESS", ""),
		MailboxPassword: getEnv("MAILBOX_PASSWORD", ""),
		SMSInboxURL:     getEnv("SMS_INBOX_URL", ""),
		TargetPhone:     getEnv("TARGET_PHONE", ""),
		DBPath:          getEnv("DB_PATH", "./otpfetch.db"),
	}

	pollSec, err := strconv.Atoi(getEnv("POLL_SECONDS", "5"))
	if err != nil || pollSec < 1 {
		return Config{}, fmt.Errorf("invalid POLL_SECONDS")
	}
	cfg.PollInterval = time.Duration(pollSec) * time.Second

	timeoutSec, err := strconv.Atoi(getEnv("ACQUIRE_TIMEOUT_SECONDS", "120"))
	if err != nil || timeoutSec < 1 {
		return Config{}, fmt.Errorf("invalid ACQUIRE_TIMEOUT_SECONDS")
	}
	cfg.AcquireTimeout = time.Duration(timeoutSec) * time.Second

	cfg.Headless = getEnv("HEADLESS", "true") != "false"

	return cfg, nil
}

// ValidateMailbox checks the fields the mailbox channel needs. Credentials
// may be empty when a mailbox is being provisioned on the fly.
func (c Config) ValidateMailbox(provisioning bool) error {
	if c.MailboxBaseURL == "" {
		return fmt.Errorf("MAILBOX_BASE_URL is required")
	}
	if !provisioning && (c.MailboxAddress == "" || c.MailboxPassword == "") {
		return fmt.Errorf("MAILBOX_ADDRESS and MAILBOX_PASSWORD are required (or provision a mailbox)")
	}
	return nil
}

// ValidateSMS checks the fields the sms channel needs.
func (c Config) ValidateSMS() error {
	if c.SMSInboxURL == "" {
		return fmt.Errorf("SMS_INBOX_URL is required")
	}
	if c.TargetPhone == "" {
		return fmt.Errorf("TARGET_PHONE is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
