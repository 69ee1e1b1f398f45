package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"session-analyzer/capacity"
	"session-analyzer/errors"
	"session-analyzer/formatter"
	"session-analyzer/metrics"
	"session-analyzer/models"
	"session-analyzer/overlap"
	"session-analyzer/parser"
	"session-analyzer/report"
	"session-analyzer/store"
)

func main() {
	// Define flags
	input := flag.String("input", "", "Input CSV file (direct analysis, or import source with -db -import)")
	dbPath := flag.String("db", os.Getenv("SESSION_ANALYZER_DB"), "SQLite session store path")
	doImport := flag.Bool("import", false, "Load -input CSV into -db, then exit")
	monthFlag := flag.String("month", "", "Snapshot month YYYY-MM when reading from -db (default: current month)")
	branch := flag.String("branch", "global", "Branch filter and capacity context")
	format := flag.String("format", "text", "Output format: text|csv|json")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	// Parse command-line flags
	flag.Parse()

	// Start metrics server if address provided
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			fmt.Printf("Metrics server listening on %s/metrics\n", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				fmt.Printf("Metrics server error: %v\n", err)
			}
		}()
	}

	// Validate format enum
	validFormats := map[string]bool{"text": true, "csv": true, "json": true}
	if !validFormats[*format] {
		fmt.Printf("Error: format must be one of: text, csv, json (got: %s)\n", *format)
		os.Exit(1)
	}

	if *input == "" && *dbPath == "" {
		fmt.Println("Error: either -input or -db is required")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	month, err := resolveMonth(*monthFlag)
	if err != nil {
		fmt.Printf("Error: invalid -month %q: %v\n", *monthFlag, err)
		os.Exit(1)
	}

	if *doImport {
		if *input == "" || *dbPath == "" {
			fmt.Println("Error: -import requires both -input and -db")
			os.Exit(1)
		}
		if err := importCSV(*input, *dbPath); err != nil {
			fmt.Printf("Error importing sessions: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sessions, err := loadSessions(*input, *dbPath, month, *branch)
	if err != nil {
		fmt.Printf("Error loading sessions: %v\n", err)
		os.Exit(1)
	}

	analysis := analyze(sessions, *branch, month)

	// Output based on format
	switch *format {
	case "csv":
		fmt.Print(formatter.FormatCSV(analysis))
	case "json":
		fmt.Print(formatter.FormatJSON(analysis))
	default: // "text"
		fmt.Print(formatter.FormatText(analysis))
	}

	// Handle metrics pushing or waiting
	if *pushGateway != "" {
		jobName := "session_analyzer"
		if err := push.New(*pushGateway, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			fmt.Fprintf(os.Stderr, "Error pushing to Pushgateway: %v\n", err)
		} else {
			fmt.Println("\nMetrics successfully pushed to Pushgateway")
		}
	}

	if *wait && *metricsAddr != "" {
		fmt.Println("\nProcess kept alive for metric scraping. Press Ctrl+C to exit.")
		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		fmt.Println("\nExiting...")
	} else if *metricsAddr != "" && *pushGateway == "" {
		// Small delay to allow final scrape if not waiting explicitly
		// but typically batch jobs should use pushgateway or wait
		time.Sleep(100 * time.Millisecond)
	}
}

// resolveMonth parses a YYYY-MM flag, defaulting to the current month.
func resolveMonth(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.ParseInLocation("2006-01", value, time.UTC)
}

// importCSV parses a CSV file and stores every session in one batch.
func importCSV(input, dbPath string) error {
	sessions, err := parseFile(input)
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := st.PutAll(ctx, sessions); err != nil {
		return err
	}
	slog.Info("imported sessions", "count", len(sessions), "db", dbPath)
	return nil
}

// loadSessions reads the snapshot from the CSV input when given,
// otherwise from the session store for the requested month and branch.
func loadSessions(input, dbPath string, month time.Time, branch string) ([]models.Session, error) {
	if input != "" {
		return parseFile(input)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return st.ListMonth(ctx, month.Year(), month.Month(), branch)
}

func parseFile(path string) ([]models.Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	start := time.Now()
	sessions, err := parser.Parse(file)
	metrics.ParserDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ParserErrorsTotal.WithLabelValues(parseErrorType(err)).Inc()
		return nil, err
	}
	metrics.ParserRecordsTotal.Add(float64(len(sessions)))
	return sessions, nil
}

// parseErrorType maps a parse error onto its metrics label.
func parseErrorType(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrInvalidFieldCount):
		return "invalid_field_count"
	case stderrors.Is(err, errors.ErrInvalidDate):
		return "invalid_date"
	case stderrors.Is(err, errors.ErrInvalidStartTime):
		return "invalid_start_time"
	case stderrors.Is(err, errors.ErrInvalidEndTime):
		return "invalid_end_time"
	case stderrors.Is(err, errors.ErrInvalidTimeOrder):
		return "invalid_time_order"
	case stderrors.Is(err, errors.ErrInvalidCandidates):
		return "invalid_candidates"
	default:
		return "other"
	}
}

// analyze runs one full pass over the snapshot and records metrics.
func analyze(sessions []models.Session, branch string, month time.Time) models.Analysis {
	metrics.ResetAnalyzerGauges()
	start := time.Now()

	seatCapacity := capacity.Resolve(branch)
	reports := overlap.Detect(sessions, seatCapacity)
	aggregates := report.AggregateByClient(sessions)

	metrics.AnalyzerDurationSeconds.Observe(time.Since(start).Seconds())

	totalCandidates := 0
	for _, s := range sessions {
		totalCandidates += s.Candidates
	}

	excess := 0
	for _, rep := range reports {
		excess += rep.ExcessCandidates
		metrics.OverlapHoursByDate.WithLabelValues(rep.Date.Format("2006-01-02")).Set(rep.OverlapHours)
	}

	metrics.CandidatesTotal.Set(float64(totalCandidates))
	metrics.SessionsTotal.Set(float64(len(sessions)))
	metrics.OverlapDays.Set(float64(len(reports)))
	metrics.ExcessCandidatesTotal.Set(float64(excess))
	metrics.CapacitySeats.Set(float64(seatCapacity))
	metrics.AnalyzerClientsProcessed.Observe(float64(len(aggregates)))

	return models.Analysis{
		Reports:         reports,
		Aggregates:      aggregates,
		TotalCandidates: totalCandidates,
		TotalSessions:   len(sessions),
		Capacity:        seatCapacity,
		Context:         fmt.Sprintf("%s %s %d", branch, month.Month(), month.Year()),
	}
}
