// Package smsinbox extracts candidate SMS rows from a rendered public inbox
// page. Relay pages expose no stable DOM contract, so rows are located by an
// ordered chain of structural strategies tried until one matches.
package smsinbox

import (
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Row is a raw scraped message row: its full visible text plus the nearby
// relative-age label, if one was found. TimeText is "" when no label exists.
type Row struct {
	Text     string
	TimeText string
}

// rowStrategy is one way of locating message rows on the page. Strategies
// are tried in order; the first that matches at least one element wins.
type rowStrategy struct {
	name     string
	selector string
}

var rowStrategies = []rowStrategy{
	{"table-body-rows", "table tbody tr"},
	{"table-rows", "table tr"},
	{"message-items", ".message, .sms, .msg-item"},
	{"list-group-rows", ".list-group-item, li.row"},
	{"list-items", "ul li"},
}

// When no strategy matches, the page's main content container is treated as
// a single pseudo-row.
var contentSelectors = []string{"main", "#content", ".content", "body"}

// Label selectors probed within a row for its relative-age text.
var timeLabelSelectors = []string{
	".time",
	".date",
	".ago",
	"td.time",
	"span.time",
	"time",
	"small",
}

var agoText = regexp.MustCompile(`(?i)\b\d+\s*(?:seconds?|secs?|minutes?|mins?|hours?|hrs?|days?)\s+ago\b`)

// Scraper pulls raw rows out of a loaded SMS inbox page.
type Scraper struct {
	logger *zap.Logger
}

func NewScraper(logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{logger: logger.Named("smsinbox")}
}

// Rows extracts message rows in page document order. The page's own ordering
// is not guaranteed chronological; callers rank by timestamp themselves.
func (s *Scraper) Rows(page playwright.Page) ([]Row, error) {
	for _, strategy := range rowStrategies {
		handles, err := page.QuerySelectorAll(strategy.selector)
		if err != nil || len(handles) == 0 {
			continue
		}

		s.logger.Debug("row strategy matched",
			zap.String("strategy", strategy.name),
			zap.Int("rows", len(handles)))

		rows := make([]Row, 0, len(handles))
		for _, handle := range handles {
			row, ok := s.rowFromHandle(handle)
			if ok {
				rows = append(rows, row)
			}
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}

	return s.contentFallback(page)
}

// contentFallback treats the main content container as one pseudo-row.
func (s *Scraper) contentFallback(page playwright.Page) ([]Row, error) {
	for _, selector := range contentSelectors {
		text, err := page.InnerText(selector)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		s.logger.Debug("no row strategy matched, using content container",
			zap.String("selector", selector))
		return []Row{{
			Text:     text,
			TimeText: agoText.FindString(text),
		}}, nil
	}
	return nil, nil
}

func (s *Scraper) rowFromHandle(handle playwright.ElementHandle) (Row, bool) {
	text, err := handle.InnerText()
	if err != nil || strings.TrimSpace(text) == "" {
		return Row{}, false
	}

	return Row{Text: text, TimeText: s.timeLabel(handle, text)}, true
}

// timeLabel probes the label selector chain within the row, falling back to
// an "N unit ago" substring of the row text.
func (s *Scraper) timeLabel(handle playwright.ElementHandle, rowText string) string {
	for _, selector := range timeLabelSelectors {
		label, err := handle.QuerySelector(selector)
		if err != nil || label == nil {
			continue
		}
		text, err := label.InnerText()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return agoText.FindString(rowText)
}
