package browser

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/nsedata/bhavget/config"
)

// monthLayout is the month/year heading shown by the date picker.
const monthLayout = "January 2006"

// maxMonthSteps bounds calendar navigation to two years in either direction.
const maxMonthSteps = 24

var chromiumArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--start-maximized",
}

// Selector candidates tried in order; the site has shipped several markup
// variants of the archives page.
var (
	searchBoxSelectors = []string{
		"#crEquityArchivesSearch",
		"input[placeholder='Enter a keyword']",
		"input.searchby_input",
	}
	checkmarkSelectors = []string{
		"div.card-body label:has-text('Full Bhavcopy') span.checkmark",
		"label.chk_container:has-text('Full Bhavcopy') span.checkmark",
		"label.chk_container span.checkmark",
		"span.checkmark",
	}
	calendarButtonSelectors = []string{
		"button[aria-label='Datepicker button']",
		"button:has(i.fa-calendar)",
		"span[role='button'] button:has(i.fa-calendar)",
	}
	dateCellSelectors = []string{
		"div.gj-picker div:text-is('%s')",
		"div.calendar td:text-is('%s')",
		"div.datepicker td:text-is('%s')",
		"table[role='grid'] td:text-is('%s')",
	}
	downloadIconSelectors = []string{
		"div.card-body span.reportDownloadIcon a[aria-label='Download File']",
		"div.card-body span.reportDownloadIcon a",
		"span.reportDownloadIcon a.pdf-download-link",
		"span.reportDownloadIcon a",
	}

	periodSelector        = "div[data-role='period']"
	chevronRightSelector  = "div[data-role='navigator'] div:has(i.fa-chevron-right)"
	chevronLeftSelector   = "div[data-role='navigator'] div:has(i.fa-chevron-left)"
	reportSearchKeyword   = "full"
	maskWebdriverScript   = "Object.defineProperty(navigator, 'webdriver', {get: () => undefined})"
	scrollToTopExpression = "window.scrollTo(0, 0)"
)

// PlaywrightLauncher launches Chromium sessions via Playwright.
type PlaywrightLauncher struct {
	cfg *config.Config
	pw  *playwright.Playwright
}

// NewPlaywrightLauncher starts the Playwright driver. A failure here aborts
// the run.
func NewPlaywrightLauncher(cfg *config.Config) (*PlaywrightLauncher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright driver: %w", err)
	}
	return &PlaywrightLauncher{cfg: cfg, pw: pw}, nil
}

// Launch opens a fresh browser with the given user agent, saving downloads
// into downloadDir.
func (l *PlaywrightLauncher) Launch(ctx context.Context, userAgent, downloadDir string) (Automation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chromium, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.cfg.Headless),
		Args:     chromiumArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browserCtx, err := chromium.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:       playwright.String(userAgent),
		AcceptDownloads: playwright.Bool(true),
	})
	if err != nil {
		chromium.Close()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		chromium.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.AddInitScript(playwright.Script{Content: playwright.String(maskWebdriverScript)}); err != nil {
		chromium.Close()
		return nil, fmt.Errorf("install init script: %w", err)
	}

	page.OnDownload(func(download playwright.Download) {
		target := filepath.Join(downloadDir, download.SuggestedFilename())
		if err := download.SaveAs(target); err != nil {
			slog.Error("save download", slog.String("file", target), slog.Any("error", err))
		}
	})

	return &playwrightSession{cfg: l.cfg, browser: chromium, page: page}, nil
}

// Stop shuts down the Playwright driver.
func (l *PlaywrightLauncher) Stop() error {
	return l.pw.Stop()
}

type playwrightSession struct {
	cfg     *config.Config
	browser playwright.Browser
	page    playwright.Page
}

func (s *playwrightSession) Setup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.page.Goto(s.cfg.BaseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.cfg.NavTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("navigate to archives page: %w", err)
	}
	// Let the page scripts populate the report list.
	s.page.WaitForTimeout(float64(s.cfg.SetupSettle.Milliseconds()))

	if search, ok := s.firstPresent(searchBoxSelectors); ok {
		if err := search.Fill(reportSearchKeyword); err != nil {
			slog.Warn("report search box rejected input", slog.Any("error", err))
		}
		s.page.WaitForTimeout(1000)
		s.scrollToTop()
	} else {
		slog.Warn("report search box not found, continuing without filter")
	}

	checkmark, ok := s.firstPresent(checkmarkSelectors)
	if !ok {
		return fmt.Errorf("report checkbox not found")
	}
	if err := checkmark.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		return fmt.Errorf("select report checkbox: %w", err)
	}
	s.page.WaitForTimeout(500)
	return nil
}

func (s *playwrightSession) SelectDate(ctx context.Context, date time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.scrollToTop()

	button, ok := s.firstPresent(calendarButtonSelectors)
	if !ok {
		return fmt.Errorf("calendar button not found")
	}
	if err := button.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		return fmt.Errorf("open date picker: %w", err)
	}
	s.page.WaitForTimeout(1000)

	if err := s.stepToMonth(date); err != nil {
		return err
	}

	day := fmt.Sprintf("%d", date.Day())
	for _, pattern := range dateCellSelectors {
		cell := s.page.Locator(fmt.Sprintf(pattern, day)).First()
		if visible, err := cell.IsVisible(); err != nil || !visible {
			continue
		}
		if err := cell.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
			continue
		}
		s.page.WaitForTimeout(2000)
		return nil
	}
	return fmt.Errorf("date cell %s not found in picker", date.Format("02-Jan-2006"))
}

func (s *playwrightSession) TriggerDownload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.page.WaitForTimeout(1000)
	icon, ok := s.firstPresent(downloadIconSelectors)
	if !ok {
		return fmt.Errorf("download icon not found")
	}
	// Force avoids interception by overlays that float above the icon.
	if err := icon.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(5000),
		Force:   playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("click download icon: %w", err)
	}
	return nil
}

func (s *playwrightSession) Close() error {
	if err := s.browser.Close(); err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

// stepToMonth clicks the picker chevrons until the heading shows the target
// month.
func (s *playwrightSession) stepToMonth(date time.Time) error {
	target := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)

	for attempt := 0; attempt < maxMonthSteps; attempt++ {
		heading, err := s.page.Locator(periodSelector).First().TextContent()
		if err != nil {
			return fmt.Errorf("read picker heading: %w", err)
		}
		current, err := time.Parse(monthLayout, strings.TrimSpace(heading))
		if err != nil {
			return fmt.Errorf("parse picker heading %q: %w", heading, err)
		}
		if current.Equal(target) {
			return nil
		}

		chevron := chevronRightSelector
		if target.Before(current) {
			chevron = chevronLeftSelector
		}
		if err := s.page.Locator(chevron).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
			return fmt.Errorf("step picker month: %w", err)
		}
		s.page.WaitForTimeout(500)
	}
	return fmt.Errorf("month %s not reachable within %d steps", date.Format(monthLayout), maxMonthSteps)
}

// firstPresent returns the first selector candidate with a visible match.
func (s *playwrightSession) firstPresent(selectors []string) (playwright.Locator, bool) {
	for _, selector := range selectors {
		locator := s.page.Locator(selector).First()
		if visible, err := locator.IsVisible(); err == nil && visible {
			return locator, true
		}
	}
	return nil, false
}

func (s *playwrightSession) scrollToTop() {
	if _, err := s.page.Evaluate(scrollToTopExpression); err != nil {
		slog.Debug("scroll to top failed", slog.Any("error", err))
	}
	s.page.WaitForTimeout(500)
}
