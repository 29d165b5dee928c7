package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nsedata/bhavget/analyze"
	"github.com/nsedata/bhavget/browser"
	"github.com/nsedata/bhavget/config"
	"github.com/nsedata/bhavget/downloader"
	"github.com/nsedata/bhavget/holidays"
	"github.com/nsedata/bhavget/report"
)

const dateLayout = "2006-01-02"

const defaultHolidayURL = "https://www.nseindia.com/resources/exchange-communication-holidays"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bhavget",
		Short:         "Download and audit NSE full bhavcopy files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newDownloadCmd(), newAnalyzeCmd(), newHolidaysCmd())
	return rootCmd
}

func newDownloadCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	startDefault := defaults.StartDate.Format(dateLayout)
	if value, ok := config.EnvString("BHAVGET_START_DATE"); ok {
		startDefault = value
	}
	endDefault := defaults.EndDate.Format(dateLayout)
	if value, ok := config.EnvString("BHAVGET_END_DATE"); ok {
		endDefault = value
	}
	outputDefault := ""
	if value, ok := config.EnvString("BHAVGET_OUTPUT_DIR"); ok {
		outputDefault = value
	}
	metricsDefault := defaults.MetricsAddr
	if value, ok := config.EnvString("BHAVGET_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	pollTimeoutDefault := int(defaults.PollTimeout / time.Second)
	if value, ok, err := config.EnvInt("BHAVGET_POLL_TIMEOUT"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid BHAVGET_POLL_TIMEOUT: %v\n", err)
		os.Exit(1)
	} else if ok {
		pollTimeoutDefault = value
	}

	var (
		startDate     string
		endDate       string
		outputDir     string
		holidayFile   string
		summaryFormat string
		metricsAddr   string
		pollTimeout   int
		headed        bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download bhavcopy files for a date range",
		RunE: func(c *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			var err error
			if cfg.StartDate, err = time.Parse(dateLayout, startDate); err != nil {
				return fmt.Errorf("invalid --start-date: %w", err)
			}
			if cfg.EndDate, err = time.Parse(dateLayout, endDate); err != nil {
				return fmt.Errorf("invalid --end-date: %w", err)
			}
			cfg.OutputDir = outputDir
			cfg.HolidayFile = holidayFile
			cfg.SummaryFormat = strings.ToLower(summaryFormat)
			cfg.MetricsAddr = metricsAddr
			cfg.PollTimeout = time.Duration(pollTimeout) * time.Second
			cfg.Headless = !headed
			cfg.Verbose = verbose

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runDownload(cfg)
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", startDefault, "First date to download (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", endDefault, "Last date to download (YYYY-MM-DD)")
	cmd.Flags().StringVar(&outputDir, "output-dir", outputDefault, "Download directory (default data/<YYYYMM>)")
	cmd.Flags().StringVar(&holidayFile, "holiday-file", defaults.HolidayFile, "Holiday reference CSV")
	cmd.Flags().StringVar(&summaryFormat, "summary-format", defaults.SummaryFormat, "Summary format: csv, json, or dual")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	cmd.Flags().IntVar(&pollTimeout, "poll-timeout", pollTimeoutDefault, "Seconds to wait for a download to appear")
	cmd.Flags().BoolVar(&headed, "headed", false, "Run the browser with a visible window")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	return cmd
}

func runDownload(cfg *config.Config) error {
	rangeTag := fmt.Sprintf("%s_%s",
		cfg.StartDate.Format("20060102"), cfg.EndDate.Format("20060102"))

	logFile, err := openLogFile(cfg.LogsDir, rangeTag)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger, level := newLogger(cfg.Verbose, logFile)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	slog.Info("starting download run",
		slog.String("start", cfg.StartDate.Format(dateLayout)),
		slog.String("end", cfg.EndDate.Format(dateLayout)),
		slog.String("output_dir", cfg.ResolvedOutputDir()),
	)

	set, err := holidays.Load(cfg.HolidayFile)
	if err != nil {
		slog.Warn("holiday file unavailable, using recurring fallback",
			slog.String("file", cfg.HolidayFile),
			slog.Any("error", err),
		)
		set = holidays.Fallback()
	} else {
		slog.Info("loaded holiday file",
			slog.String("file", cfg.HolidayFile),
			slog.Int("dates", set.Len()),
		)
	}

	launcher, err := browser.NewPlaywrightLauncher(cfg)
	if err != nil {
		return fmt.Errorf("starting browser driver: %w", err)
	}
	defer func() {
		if err := launcher.Stop(); err != nil {
			slog.Error("stop browser driver", slog.Any("error", err))
		}
	}()

	recorder := report.NewRecorder()
	d := downloader.New(cfg, set, launcher, recorder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing current date")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && d.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	startTime := time.Now()
	result, runErr := d.Run(ctx)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	records := recorder.Records()
	summaryPath := filepath.Join(cfg.LogsDir, fmt.Sprintf("download_summary_%s.csv", rangeTag))
	if len(records) > 0 {
		writer, err := createWriter(cfg.SummaryFormat, summaryPath)
		if err != nil {
			return fmt.Errorf("creating summary writer: %w", err)
		}
		if err := writer.Write(records); err != nil {
			slog.Error("write summary", slog.Any("error", err))
		}
		if err := writer.Close(); err != nil {
			slog.Error("close summary writer", slog.Any("error", err))
		}
		if err := writer.Validate(); err != nil {
			slog.Error("summary validation failed", slog.Any("error", err))
		}
	}

	if result != nil {
		report.PrintSummary(result, records, time.Since(startTime), summaryPath)
	}
	if runErr != nil {
		return fmt.Errorf("download run aborted: %w", runErr)
	}
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		inputDir    string
		outputDir   string
		noRecursive bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Audit downloaded bhavcopy files and report gaps",
		RunE: func(c *cobra.Command, args []string) error {
			logger, _ := newLogger(false, nil)
			slog.SetDefault(logger)

			files, err := analyze.ScanDir(inputDir, !noRecursive)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no bhavcopy files found under %s", inputDir)
			}

			missing := analyze.MissingDates(files)
			if err := analyze.SaveReports(files, missing, outputDir); err != nil {
				return err
			}
			analyze.PrintReport(files, missing)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "Directory holding downloaded files")
	cmd.Flags().StringVar(&outputDir, "output-dir", "analysis", "Directory for the audit reports")
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "Do not descend into subdirectories")
	cmd.MarkFlagRequired("input-dir")
	return cmd
}

func newHolidaysCmd() *cobra.Command {
	holidaysCmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage the holiday reference file",
	}

	var (
		output  string
		pageURL string
	)

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Scrape the exchange holiday table into a local CSV",
		RunE: func(c *cobra.Command, args []string) error {
			logger, _ := newLogger(false, nil)
			slog.SetDefault(logger)

			agents := config.DefaultUserAgents()
			count, err := holidays.Fetch(holidays.FetchConfig{
				URL:       pageURL,
				UserAgent: agents[0],
				Timeout:   30 * time.Second,
			}, output)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d holiday dates to %s\n", count, output)
			return nil
		},
	}

	fetchCmd.Flags().StringVar(&output, "output", config.DefaultConfig().HolidayFile, "Destination CSV path")
	fetchCmd.Flags().StringVar(&pageURL, "url", defaultHolidayURL, "Holiday page URL")

	holidaysCmd.AddCommand(fetchCmd)
	return holidaysCmd
}

func createWriter(format, csvPath string) (report.SummaryWriter, error) {
	switch format {
	case "csv":
		return report.NewCSVWriter(csvPath)
	case "json":
		return report.NewJSONWriter(strings.TrimSuffix(csvPath, ".csv") + ".json")
	case "dual":
		jsonPath := strings.TrimSuffix(csvPath, ".csv") + ".json"
		return report.NewDualWriter(csvPath, jsonPath)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// openLogFile creates logs/download_log_<range>.txt for the log tee.
func openLogFile(logsDir, rangeTag string) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	path := filepath.Join(logsDir, fmt.Sprintf("download_log_%s.txt", rangeTag))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	return f, nil
}

func newLogger(verbose bool, tee io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	out := io.Writer(os.Stdout)
	if tee != nil {
		out = io.MultiWriter(os.Stdout, tee)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
