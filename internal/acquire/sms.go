package acquire

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/otp"
	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/smsinbox"
)

// FreshnessWindowSeconds caps how old an "N seconds ago" label may be before
// the row is presumed stale. Tuned against the one relay page this runs
// against; do not assume it generalizes to other providers.
const FreshnessWindowSeconds = 120

// Candidate is a scraped row enriched with its parsed timestamp and
// extracted code. Ephemeral; rebuilt on every poll because the page is
// stateless and may reorder or duplicate rows.
type Candidate struct {
	Row        smsinbox.Row
	Code       string
	ReceivedAt time.Time
	HasTime    bool
	Fresh      bool
}

// PageScraper is the row-extraction capability of the smsinbox package.
type PageScraper interface {
	Rows(page playwright.Page) ([]smsinbox.Row, error)
}

// SMSAcquirer polls a public SMS inbox page for a fresh code sent to one
// target number.
type SMSAcquirer struct {
	scraper  PageScraper
	phone    string
	interval time.Duration
	logger   *zap.Logger
}

func NewSMSAcquirer(scraper PageScraper, phone string, interval time.Duration, logger *zap.Logger) *SMSAcquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMSAcquirer{
		scraper:  scraper,
		phone:    phone,
		interval: interval,
		logger:   logger.Named("sms"),
	}
}

// WaitForOTP reloads and scrapes the inbox page until a fresh candidate for
// the target number appears or the wall-clock deadline passes. Page-load and
// scrape hiccups keep polling; only the deadline ends the loop in failure,
// as a *TimeoutError.
func (a *SMSAcquirer) WaitForOTP(ctx context.Context, page playwright.Page, inboxURL string, deadline time.Time) (string, error) {
	started := time.Now()
	loaded := false
	var code string

	err := pollUntil(ctx, a.interval, 0, deadline, func() (bool, error) {
		if err := a.loadInbox(page, inboxURL, loaded); err != nil {
			a.logger.Warn("inbox page load failed", zap.Error(err))
			return false, nil
		}
		loaded = true

		rows, err := a.scraper.Rows(page)
		if err != nil {
			a.logger.Warn("scrape failed", zap.Error(err))
			return false, nil
		}

		now := time.Now()
		candidates := enrich(rows, now)
		selected, ok := selectCandidate(candidates, a.phone, now)
		if !ok {
			a.logger.Debug("no qualifying candidate yet", zap.Int("rows", len(rows)))
			return false, nil
		}

		code = selected
		return true, nil
	})

	if errors.Is(err, errExhausted) {
		return "", &TimeoutError{Channel: "sms", Waited: time.Since(started)}
	}
	if err != nil {
		return "", err
	}

	a.logger.Info("acquired SMS OTP", zap.String("phone", a.phone))
	return code, nil
}

func (a *SMSAcquirer) loadInbox(page playwright.Page, inboxURL string, loaded bool) error {
	if !loaded {
		if _, err := page.Goto(inboxURL, playwright.PageGotoOptions{
			Timeout: playwright.Float(30000),
		}); err != nil {
			return err
		}
		return page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State: playwright.LoadStateNetworkidle,
		})
	}

	_, err := page.Reload(playwright.PageReloadOptions{
		Timeout: playwright.Float(10000),
	})
	return err
}

// enrich attaches the extracted code, parsed relative timestamp and
// freshness verdict to each raw row.
func enrich(rows []smsinbox.Row, now time.Time) []Candidate {
	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		c := Candidate{
			Row:  row,
			Code: otp.ExtractSixDigitCode(row.Text),
		}
		if ts, ok := otp.ParseRelativeAge(row.TimeText, now); ok {
			c.ReceivedAt = ts
			c.HasTime = true
		}
		if n, ok := otp.RelativeSeconds(row.TimeText); ok && n <= FreshnessWindowSeconds {
			c.Fresh = true
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// selectCandidate applies the filter pipeline: drop codeless rows, drop rows
// from other numbers sharing the inbox, then admit only fresh seconds-scale
// labels. Among survivors the OLDEST wins: when a sender retries within the
// window, the first code issued is the one the target system still expects.
func selectCandidate(candidates []Candidate, phone string, now time.Time) (string, bool) {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Code == "" {
			continue
		}
		if !strings.Contains(c.Row.Text, phone) {
			continue
		}
		if !c.Fresh {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return "", false
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return effectiveTime(eligible[i], now).Before(effectiveTime(eligible[j], now))
	})
	return eligible[0].Code, true
}

// effectiveTime ranks a candidate with an unparseable label as "now", which
// sorts it after anything with a real age.
func effectiveTime(c Candidate, now time.Time) time.Time {
	if c.HasTime {
		return c.ReceivedAt
	}
	return now
}
