// reconcile matches a manufacturer price sheet against channel exports
// without a database.
//
// Usage:
//
//	reconcile match --manufacturer prices.xlsx --platform AMAZON=amazon.csv --platform EBAY=ebay.csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"sku-reconciliation-service/internal/config"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/services"
)

const localTenant = "local"

func main() {
	app := &cli.App{
		Name:  "reconcile",
		Usage: "Match a manufacturer catalog against sales channel catalogs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"RECONCILE_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			matchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Run the match engine and write a results workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "manufacturer",
				Aliases:  []string{"m"},
				Usage:    "Manufacturer price sheet (CSV or XLSX)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "platform",
				Aliases:  []string{"p"},
				Usage:    "Channel export as PLATFORM=FILE, repeatable",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "Matching profile (TOML)",
				EnvVars: []string{"MATCHING_PROFILE"},
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "results.xlsx",
				Usage:   "Output workbook",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Match workers (default: number of CPUs)",
			},
		},
		Action: runMatch,
	}
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func runMatch(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(c.String("log-level"))

	profile, err := config.LoadMatchingProfile(c.String("profile"))
	if err != nil {
		return err
	}
	workers := profile.Workers
	if c.Int("workers") > 0 {
		workers = c.Int("workers")
	}

	manufacturer, err := loadManufacturer(c.String("manufacturer"))
	if err != nil {
		return err
	}

	importer := services.NewImportService(nil, services.NopAuditLogger{}, profile.Columns, logger)
	platforms := make(map[matching.Platform][]matching.PlatformItem)
	for _, arg := range c.StringSlice("platform") {
		platform, path, err := parsePlatformArg(arg)
		if err != nil {
			return err
		}
		items, err := loadPlatform(importer, platform, path)
		if err != nil {
			return err
		}
		platforms[platform] = items
		fmt.Fprintf(os.Stderr, "Loaded %d %s listings from %s\n", len(items), platform.DisplayName(), path)
	}

	start := time.Now()
	engine := matching.NewEngine(logger, matching.WithWorkers(workers))
	table, err := engine.ComputeMatches(ctx, manufacturer, platforms)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	analysis := services.NewPricingService(logger).Analyze(table)
	exports := services.NewExportService(services.NopAuditLogger{}, logger).Build(table)

	out := c.String("out")
	if err := writeResults(out, table, analysis, exports); err != nil {
		return err
	}

	printSummary(services.Summarize(table), analysis.Metrics, time.Since(start), out)
	return nil
}

// parsePlatformArg splits PLATFORM=FILE
func parsePlatformArg(arg string) (matching.Platform, string, error) {
	name, path, ok := strings.Cut(arg, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return "", "", fmt.Errorf("invalid --platform %q, expected PLATFORM=FILE", arg)
	}
	platform, err := matching.ParsePlatform(name)
	if err != nil {
		return "", "", err
	}
	return platform, strings.TrimSpace(path), nil
}

func loadManufacturer(path string) ([]matching.ManufacturerItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manufacturer file: %w", err)
	}
	defer f.Close()

	rows, err := services.ParseTable(f, filepath.Base(path), "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	products, err := services.MapManufacturerRows(localTenant, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	items := make([]matching.ManufacturerItem, len(products))
	for i, p := range products {
		items[i] = p.Item()
	}
	return items, nil
}

func loadPlatform(importer *services.ImportService, platform matching.Platform, path string) ([]matching.PlatformItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", platform, err)
	}
	defer f.Close()

	rows, err := services.ParseTable(f, filepath.Base(path), string(platform))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	listings, err := importer.MapPlatformRows(localTenant, platform, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	items := make([]matching.PlatformItem, len(listings))
	for i, l := range listings {
		items[i] = l.Item()
	}
	return items, nil
}

func printSummary(summary services.RunSummary, metrics services.PriceMetrics, took time.Duration, out string) {
	fmt.Printf("Products:           %d\n", summary.TotalProducts)
	fmt.Printf("Platforms:          %d\n", summary.PlatformCount)
	fmt.Printf("Matches:            %d\n", summary.TotalMatches)
	fmt.Printf("  exact (>=95):     %d\n", summary.ExactMatches)
	fmt.Printf("  high (85-94):     %d\n", summary.HighConfidence)
	fmt.Printf("  medium (70-84):   %d\n", summary.MediumConfidence)
	fmt.Printf("  low (<70):        %d\n", summary.LowConfidence)
	fmt.Printf("Review required:    %d\n", summary.ReviewRequired)
	fmt.Printf("Price increases:    %d\n", metrics.Increases)
	fmt.Printf("Price decreases:    %d\n", metrics.Decreases)
	fmt.Printf("MAP violations:     %d\n", metrics.MAPViolations)
	fmt.Printf("Average change:     %.2f%%\n", metrics.AvgChange)
	fmt.Printf("Took %s, wrote %s\n", took.Round(time.Millisecond), out)
}
